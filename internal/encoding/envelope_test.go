package encoding

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/milovm/milo/internal/log"
)

func testLogger(t *testing.T) *log.Logger {
	return log.NewFormattedLogger(testWriter{t})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(b []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(b), "\n"))
	return len(b), nil
}

// runScenario executes a program with a cycle budget of 1000, ending on wrap, against the given
// devices.
func runScenario(t *testing.T, code string, devices ...DeviceDecl) Output {
	t.Helper()

	limit := 1000
	opts := Options{
		Code:             code,
		InstructionLimit: &limit,
		EndOnWrap:        true,
		Devices:          devices,
	}

	return Run(context.Background(), opts, testLogger(t))
}

func message(name string) DeviceDecl {
	return DeviceDecl{Name: name, Spec: DeviceSpec{Kind: Message}}
}

func memory(name string, capacity int) DeviceDecl {
	return DeviceDecl{Name: name, Spec: DeviceSpec{Kind: Memory, Capacity: capacity}}
}

func wantSuccess(t *testing.T, out Output) *Success {
	t.Helper()

	if out.Failure != nil {
		t.Fatalf("failure: %s", out.Failure.Msg)
	}

	if out.Success == nil {
		t.Fatal("empty output")
	}

	return out.Success
}

func wantMessageText(t *testing.T, s *Success, name, want string) {
	t.Helper()

	state, ok := s.Devices[name]
	if !ok || state.Message == nil {
		t.Fatalf("no message state for %s", name)
	}

	if *state.Message != want {
		t.Errorf("%s.text want: %q, got: %q", name, want, *state.Message)
	}
}

func TestScenarios(tt *testing.T) {
	tt.Parallel()

	tt.Run("plain-print", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "set x 1\nprint x\nprint \"abc\"\nprintflush m1", message("m1"))

		s := wantSuccess(t, out)

		if s.FinishReason != "PcWrap" {
			t.Errorf("finish_reason want: PcWrap, got: %s", s.FinishReason)
		}

		wantMessageText(t, s, "m1", "1abc")

		if s.PrintBuffer != "" {
			t.Errorf("print_buffer want: empty, got: %q", s.PrintBuffer)
		}
	})

	tt.Run("arithmetic", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "op add y 2 3\nprint y\nprintflush m1", message("m1"))

		wantMessageText(t, wantSuccess(t, out), "m1", "5")
	})

	tt.Run("conditional-jump", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t,
			"set i 0\nop add i i 1\njump 1 lessThan i 3\nprint i\nprintflush m1",
			message("m1"))

		wantMessageText(t, wantSuccess(t, out), "m1", "3")
	})

	tt.Run("memory-round-trip", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "write 7 c1 2\nread v c1 2\nprint v\nprintflush m1",
			message("m1"), memory("c1", 4))

		s := wantSuccess(t, out)
		wantMessageText(t, s, "m1", "7")

		state := s.Devices["c1"]
		if state.Memory == nil {
			t.Fatal("no memory state for c1")
		}

		if want := []float64{0, 0, 7, 0}; !reflect.DeepEqual(state.Memory, want) {
			t.Errorf("c1 want: %v, got: %v", want, state.Memory)
		}
	})

	tt.Run("string-indexing", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "read n \"AB\" 1\nprint n\nprintflush m1", message("m1"))

		wantMessageText(t, wantSuccess(t, out), "m1", "66")
	})

	tt.Run("division-by-zero", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "op div q 1 0", message("m1"))

		if out.Failure == nil {
			t.Fatal("want failure")
		}

		if want := AtInstruction(0); out.Failure.Pos != want {
			t.Errorf("pos want: %+v, got: %+v", want, out.Failure.Pos)
		}

		if want := "Error at instruction 0: Division by zero"; out.Failure.Msg != want {
			t.Errorf("msg want: %q, got: %q", want, out.Failure.Msg)
		}
	})
}

func TestFailureRendering(tt *testing.T) {
	tt.Parallel()

	tt.Run("construction-has-no-pos", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "")

		if out.Failure == nil {
			t.Fatal("want failure")
		}

		if out.Failure.Pos != (ErrorPos{}) {
			t.Errorf("pos want: none, got: %+v", out.Failure.Pos)
		}

		if want := "Error: Program is empty"; out.Failure.Msg != want {
			t.Errorf("msg want: %q, got: %q", want, out.Failure.Msg)
		}
	})

	tt.Run("pc-fetch", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "set @counter \"oops\"\nprint 1")

		if out.Failure == nil {
			t.Fatal("want failure")
		}

		if out.Failure.Pos != AtPCFetch() {
			t.Errorf("pos want: PcFetch, got: %+v", out.Failure.Pos)
		}

		want := "Error during program counter resolution: " +
			"Cannot cast value 'oops' of type 'str' to type 'num'"
		if out.Failure.Msg != want {
			t.Errorf("msg want: %q, got: %q", want, out.Failure.Msg)
		}
	})

	tt.Run("halt", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "stop")

		if s := wantSuccess(t, out); s.FinishReason != "Halt" {
			t.Errorf("finish_reason want: Halt, got: %s", s.FinishReason)
		}
	})

	tt.Run("instruction-limit", func(t *testing.T) {
		t.Parallel()

		limit := 5
		out := Run(context.Background(), Options{
			Code:             "set x 1",
			InstructionLimit: &limit,
			EndOnWrap:        false,
		}, testLogger(t))

		if s := wantSuccess(t, out); s.FinishReason != "InsLimit" {
			t.Errorf("finish_reason want: InsLimit, got: %s", s.FinishReason)
		}
	})

	tt.Run("code-length-limit", func(t *testing.T) {
		t.Parallel()

		codeLimit := 1
		out := Run(context.Background(), Options{
			Code:         "set a 1\nset b 2",
			CodeLenLimit: &codeLimit,
		}, testLogger(t))

		if out.Failure == nil {
			t.Fatal("want failure")
		}

		if want := "Error: Program has too many instructions (2 > 1)"; out.Failure.Msg != want {
			t.Errorf("msg want: %q, got: %q", want, out.Failure.Msg)
		}
	})
}

func TestEnvelopeJSON(tt *testing.T) {
	tt.Parallel()

	tt.Run("options", func(t *testing.T) {
		t.Parallel()

		doc := `{
			"code": "print 1\nprintflush m1",
			"instruction_limit": 1000,
			"end_on_wrap": true,
			"devices": [["m1", "Message"], ["c1", {"Memory": 4}]]
		}`

		opts, err := ReadOptions(strings.NewReader(doc))
		if err != nil {
			t.Fatal(err)
		}

		if opts.Code != "print 1\nprintflush m1" {
			t.Errorf("code: %q", opts.Code)
		}

		if opts.InstructionLimit == nil || *opts.InstructionLimit != 1000 {
			t.Errorf("instruction_limit: %v", opts.InstructionLimit)
		}

		if !opts.EndOnWrap {
			t.Error("end_on_wrap: false")
		}

		want := []DeviceDecl{message("m1"), memory("c1", 4)}
		if !reflect.DeepEqual(opts.Devices, want) {
			t.Errorf("devices want: %+v, got: %+v", want, opts.Devices)
		}
	})

	tt.Run("bad-device-spec", func(t *testing.T) {
		t.Parallel()

		_, err := ReadOptions(strings.NewReader(`{"code": "", "devices": [["m1", "Teleporter"]]}`))
		if err == nil {
			t.Error("want error for unknown device")
		}
	})

	tt.Run("success-shape", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "print \"hi\"\nprintflush m1\nstop", message("m1"))

		data, err := json.Marshal(out)
		if err != nil {
			t.Fatal(err)
		}

		want := `{"Success":{"finish_reason":"Halt",` +
			`"devices":{"m1":{"Message":"hi"}},"print_buffer":""}}`
		if string(data) != want {
			t.Errorf("want: %s, got: %s", want, data)
		}
	})

	tt.Run("failure-shape", func(t *testing.T) {
		t.Parallel()

		out := runScenario(t, "op div q 1 0")

		data, err := json.Marshal(out)
		if err != nil {
			t.Fatal(err)
		}

		want := `{"Failure":{"pos":{"Instruction":0},"msg":"Error at instruction 0: Division by zero"}}`
		if string(data) != want {
			t.Errorf("want: %s, got: %s", want, data)
		}
	})

	tt.Run("pos-tags", func(t *testing.T) {
		t.Parallel()

		for _, tc := range []struct {
			pos  ErrorPos
			want string
		}{
			{ErrorPos{}, `"None"`},
			{AtPCFetch(), `"PcFetch"`},
			{AtInstruction(3), `{"Instruction":3}`},
		} {
			data, err := json.Marshal(tc.pos)
			if err != nil {
				t.Fatal(err)
			}

			if string(data) != tc.want {
				t.Errorf("want: %s, got: %s", tc.want, data)
			}

			var back ErrorPos
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatal(err)
			}

			if back != tc.pos {
				t.Errorf("round trip want: %+v, got: %+v", tc.pos, back)
			}
		}
	})
}
