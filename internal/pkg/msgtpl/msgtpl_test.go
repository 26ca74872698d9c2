package msgtpl

import "testing"

func TestRender(t *testing.T) {
	vars := map[string]string{
		"code":  "XJPFR",
		"left":  "2",
		"total": "3",
		"name":  "main",
	}

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{
			name: "default template",
			tpl:  "",
			want: "✅ Ваш код: XJPFR\n📊 Осталось: 2/3",
		},
		{
			name: "blank template falls back",
			tpl:  "   ",
			want: "✅ Ваш код: XJPFR\n📊 Осталось: 2/3",
		},
		{
			name: "custom template",
			tpl:  "Код для {name}: {code}",
			want: "Код для main: XJPFR",
		},
		{
			name: "unknown placeholder renders empty",
			tpl:  "{code} {nope}",
			want: "XJPFR ",
		},
		{
			name: "unclosed brace falls back to default",
			tpl:  "{code} and {oops",
			want: "✅ Ваш код: XJPFR\n📊 Осталось: 2/3",
		},
		{
			name: "stray closing brace falls back to default",
			tpl:  "code} here",
			want: "✅ Ваш код: XJPFR\n📊 Осталось: 2/3",
		},
		{
			name: "no placeholders",
			tpl:  "static text",
			want: "static text",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(tc.tpl, vars); got != tc.want {
				t.Fatalf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLimitText(t *testing.T) {
	n := func(v int64) *int64 { return &v }

	tests := []struct {
		name   string
		limit  *int64
		period *int64
		want   string
	}{
		{"unlimited", nil, nil, "без ограничений"},
		{"lifetime", n(5), nil, "5 навсегда"},
		{"windowed", n(3), n(24), "3 за 24ч"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LimitText(tc.limit, tc.period); got != tc.want {
				t.Fatalf("LimitText() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatTimeLeft(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{7320, "2ч 2м"},
		{3600, "1ч 0м"},
		{600, "10м"},
		{59, "59с"},
		{0, "0с"},
		{-5, "0с"},
	}

	for _, tc := range tests {
		if got := FormatTimeLeft(tc.seconds); got != tc.want {
			t.Fatalf("FormatTimeLeft(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
