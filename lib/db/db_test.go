package db

import "testing"

func TestFeatureString(t *testing.T) {
	cases := map[Feature]string{
		FeatureSet:              "Set",
		FeatureKeys:             "Keys",
		FeatureLoad:             "Load",
		FeatureSet | FeatureGet: "Unknown",
		FeatureLoad << 1:        "Unknown",
		0:                       "Unknown",
	}
	for f, want := range cases {
		if got := f.String(); got != want {
			t.Errorf("Feature(%d).String() = %s, want %s", uint64(f), got, want)
		}
	}
}
