package gnupg

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		major int
		minor int
		full  string
	}{
		{"Modern", "cfg:group:x\ncfg:version:2.4.5\ncfg:pubkey:1;16;17\n", 2, 4, "2.4.5"},
		{"Legacy", "cfg:version:1.4.23\n", 1, 4, "1.4.23"},
		{"MajorOnly", "cfg:version:3\n", 3, 0, "3"},
		{"Missing", "cfg:pubkey:1;16\n", 0, 0, "0.0.0"},
		{"NotAtLineStart", "xcfg:version:2.2.0\n", 0, 0, "0.0.0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := ParseVersion(tc.raw)
			if v.Major != tc.major || v.Minor != tc.minor || v.String() != tc.full {
				t.Errorf("ParseVersion(%q) = %+v, expected %d.%d (%s)", tc.raw, v, tc.major, tc.minor, tc.full)
			}
		})
	}
}

func TestVersion_AtLeast(t *testing.T) {
	tests := []struct {
		v    Version
		want bool
	}{
		{Version{Major: 2, Minor: 0}, false},
		{Version{Major: 2, Minor: 1}, true},
		{Version{Major: 2, Minor: 10}, true},
		{Version{Major: 1, Minor: 9}, false},
		{Version{Major: 3, Minor: 0}, true},
	}
	for _, tc := range tests {
		if got := tc.v.AtLeast(loopbackVersion); got != tc.want {
			t.Errorf("%s.AtLeast(2.1) = %v, expected %v", tc.v, got, tc.want)
		}
	}
}
