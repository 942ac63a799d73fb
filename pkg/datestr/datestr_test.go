package datestr

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"marker date with short year", "指挥中心19年3月5日直播", "2019-03-05"},
		{"marker date with full year", "2020年12月31日 口袋48直播", "2020-12-31"},
		{"marker date already padded", "18年07月09日", "2018-07-09"},
		{"three digit year kept as is", "119年1月1日", "119-01-01"},
		{"compact date", "口袋48直播 190305", "2019-03-05"},
		{"compact date inside text", "abc210815xyz", "2021-08-15"},
		{"compact date first run wins", "200101 and 211231", "2020-01-01"},
		{"marker wins over compact", "190305 回放 20年1月2日", "2020-01-02"},
		{"no calendar validation", "991399", "2099-13-99"},
		{"five digits is not a date", "12345", ""},
		{"no digits", "口袋48直播回放", ""},
		{"empty", "", ""},
		{"incomplete marker falls back", "19年3月 190305", "2019-03-05"},
		{"year longer than four digits keeps the last four", "12019年3月5日", "2019-03-05"},
		{"full-width digits are not digits", "\uFF11\uFF19年\uFF13月\uFF15日", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.text); got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtract_AnyCompactDate(t *testing.T) {
	for _, yymmdd := range []string{"000000", "170101", "201231", "991231", "123456"} {
		want := "20" + yymmdd[:2] + "-" + yymmdd[2:4] + "-" + yymmdd[4:]

		for _, text := range []string{yymmdd, "直播" + yymmdd, yymmdd + " 回放", "x " + yymmdd + " y"} {
			if got := Extract(text); got != want {
				t.Errorf("Extract(%q) = %q, want %q", text, got, want)
			}
		}
	}
}
