package encoding

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseManifest(tt *testing.T) {
	tt.Parallel()

	tt.Run("devices-in-order", func(t *testing.T) {
		t.Parallel()

		doc := `
devices:
  - name: m1
    type: message
  - name: c1
    type: memory
    capacity: 64
`
		m, err := ParseManifest([]byte(doc))
		if err != nil {
			t.Fatal(err)
		}

		want := []DeviceDecl{
			{Name: "m1", Spec: DeviceSpec{Kind: Message}},
			{Name: "c1", Spec: DeviceSpec{Kind: Memory, Capacity: 64}},
		}

		if got := m.Decls(); !reflect.DeepEqual(got, want) {
			t.Errorf("want: %+v, got: %+v", want, got)
		}
	})

	tt.Run("empty", func(t *testing.T) {
		t.Parallel()

		m, err := ParseManifest([]byte("devices: []\n"))
		if err != nil {
			t.Fatal(err)
		}

		if len(m.Decls()) != 0 {
			t.Errorf("want no devices, got: %+v", m.Decls())
		}
	})

	tt.Run("rejects", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name string
			doc  string
			want string
		}{
			{
				"unknown-type",
				"devices:\n  - name: d\n    type: teleporter\n",
				"unknown type",
			},
			{
				"missing-name",
				"devices:\n  - type: message\n",
				"no name",
			},
			{
				"memory-without-capacity",
				"devices:\n  - name: c1\n    type: memory\n",
				"positive capacity",
			},
			{
				"message-with-capacity",
				"devices:\n  - name: m1\n    type: message\n    capacity: 4\n",
				"no capacity",
			},
			{
				"duplicate-name",
				"devices:\n  - name: d\n    type: message\n  - name: d\n    type: message\n",
				"duplicate",
			},
		}

		for _, tc := range cases {
			_, err := ParseManifest([]byte(tc.doc))
			if err == nil {
				t.Errorf("%s: want error", tc.name)
				continue
			}

			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("%s: want %q in error, got: %v", tc.name, tc.want, err)
			}
		}
	})
}
