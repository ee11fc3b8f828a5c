package subprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   string
		ok     bool
	}{
		{name: "canonical", stdout: `{"translated":"<p>Hola</p>"}`, want: "<p>Hola</p>", ok: true},
		{name: "extra fields", stdout: `{"translated":"Hallo","model":"de"}`, want: "Hallo", ok: true},
		{name: "trailing newline", stdout: "{\"translated\":\"Ciao\"}\n", want: "Ciao", ok: true},
		{name: "non-ascii", stdout: `{"translated":"café"}`, want: "café", ok: true},
		{name: "empty translation", stdout: `{"translated":""}`, want: "", ok: true},
		{name: "empty output", stdout: "", ok: false},
		{name: "not json", stdout: "Hola", ok: false},
		{name: "missing field", stdout: `{"text":"Hola"}`, ok: false},
		{name: "null field", stdout: `{"translated":null}`, ok: false},
		{name: "number field", stdout: `{"translated":42}`, ok: false},
		{name: "array root", stdout: `["Hola"]`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseResponse([]byte(tt.stdout))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
