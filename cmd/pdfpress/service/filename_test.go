package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "report.pdf", "report.pdf"},
		{"spaces replaced", "my report.pdf", "my_report.pdf"},
		{"path stripped", "../../etc/passwd", "passwd"},
		{"windows path stripped", `C:\Users\me\doc.pdf`, "doc.pdf"},
		{"unicode replaced", "résumé.pdf", "r_sum_.pdf"},
		{"leading dot stripped", ".hidden.pdf", "hidden.pdf"},
		{"empty falls back", "", "upload"},
		{"only separators falls back", "///", "upload"},
		{"keeps dashes and underscores", "a-b_c.pdf", "a-b_c.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}
