/*
Package vm implements a sandboxed interpreter for the MLOG dialect: the assembly-like language
executed by logic processors in the game Mindustry.

A program is a sequence of textual instructions, one per line. Construction parses every line up
front, interning each variable name into a store that hands out stable integer handles; from then
on instructions address their operands by handle, never by name. The program counter is itself an
ordinary variable, @counter, which is re-read and advanced on every cycle. That is the whole trick
behind control flow: jump and end do nothing but write @counter, and a program can do the same
with a plain set.

# Values #

Every variable holds a tagged value: null, an IEEE-754 double, a shared string, a device, or a
property name. There is one numeric type. Strings carry a lazily materialised view of their UTF-16
code units so that indexed reads are cheap after the first. Coercions are explicit and fail with
typed errors that render the game's messages.

# Devices #

A machine links an ordered list of peripheral devices. Each device supports some subset of four
operations: accepting a print-buffer flush, indexed reads, indexed writes and property sensing.
Message displays hold one text buffer, memory cells a fixed vector of numbers. The builtin @this
is a processor device that loops back into the machine's own variable store, addressed by
variable name.

# Running #

One cycle executes exactly one instruction to completion; there are no yield points and no clock.
The wait instruction validates its argument and nothing more, and the time-like builtins stay at
zero. Run drives cycles until a stop instruction executes, the counter wraps past the end of the
program (if the caller asked to end on wrap), or the cycle budget runs out, in that order of
precedence. Errors abort the run; an error raised by an instruction carries that instruction's
index, while a failure to resolve @counter (not an integer, or negative) carries none.
*/
package vm
