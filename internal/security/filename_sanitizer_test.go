package security

import "testing"

// TestSanitize_PathAndHTMLNeutralization はタイトルサニタイズの各ケースを検証する。
func TestSanitize_PathAndHTMLNeutralization(t *testing.T) {
	s := NewFilenameSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"通常のタイトルはそのまま", "Q3 Report.md", "Q3 Report.md"},
		{"スラッシュはアンダースコアに置換", "notes/2026/plan.md", "notes_2026_plan.md"},
		{"バックスラッシュも置換", `notes\plan.md`, "notes_plan.md"},
		{"先頭ドットは除去", "../../etc/passwd", "_.._etc_passwd"},
		{"隠しファイル化を防ぐ", ".env", "env"},
		{"HTMLタグは除去", "<b>Plan</b>.md", "Plan.md"},
		{"scriptタグは中身ごと除去", "<script>alert(1)</script>Report.md", "Report.md"},
		{"前後の空白は除去", "  meeting notes.txt  ", "meeting notes.txt"},
		{"アンパサンドは実体参照にならない", "P&L Report.xlsx", "P&L Report.xlsx"},
		{"引用符はそのまま", "Q1 'draft' \"final\".md", "Q1 'draft' \"final\".md"},
		{"タグにならない山括弧はそのまま", "a < b.txt", "a < b.txt"},
		{"実体参照で持ち込まれた区切りも無害化", "a&#47;b.txt", "a_b.txt"},
		{"全部除去されると空文字列", "<script>alert(1)</script>", ""},
		{"日本語タイトルはそのまま", "議事録.md", "議事録.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_Idempotent はサニタイズが冪等であることを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	s := NewFilenameSanitizer()

	inputs := []string{"../secret/plan.md", "<i>draft</i>.txt", "  .hidden  ", "P&L Report.xlsx"}
	for _, input := range inputs {
		once := s.Sanitize(input)
		twice := s.Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}
