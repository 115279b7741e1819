package github

import "testing"

// TestJoinPath_Normalization はセグメントの正規化と連結を検証する。
func TestJoinPath_Normalization(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{
			name:  "単純な連結",
			parts: []string{"vaultsync", "conn-1", "run_001"},
			want:  "vaultsync/conn-1/run_001",
		},
		{
			name:  "先頭と末尾のスラッシュは除去される",
			parts: []string{"/vaultsync/", "/conn-1/"},
			want:  "vaultsync/conn-1",
		},
		{
			name:  "空セグメントは捨てられる",
			parts: []string{"vaultsync", "", "run_001"},
			want:  "vaultsync/run_001",
		},
		{
			name:  "スラッシュのみのセグメントも捨てられる",
			parts: []string{"/", "vaultsync"},
			want:  "vaultsync",
		},
		{
			name:  "単一セグメント",
			parts: []string{"run_001"},
			want:  "run_001",
		},
		{
			name:  "全部空",
			parts: []string{"", "/"},
			want:  "",
		},
		{
			name:  "引数なし",
			parts: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinPath(tt.parts...)
			if got != tt.want {
				t.Errorf("JoinPath(%v) = %q, want %q", tt.parts, got, tt.want)
			}
		})
	}
}
