package curation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/evanschultz/instlist/pkg/models"
)

func TestBuildDefault(t *testing.T) {
	insts := []models.Institution{
		{ID: "1", Label: "A - course"},
		{ID: "2", Label: "Main"},
		{ID: "3", Label: "Colleges"},
	}

	got := BuildDefault(insts)
	want := ExclusionSet{"1": "A - course", "3": "Colleges"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildDefault() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseExclusions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ExclusionSet
	}{
		{
			name: "id and label",
			text: "UIS - University Information Services",
			want: ExclusionSet{"UIS": "University Information Services"},
		},
		{
			name: "bare id",
			text: "CHURCH",
			want: ExclusionSet{"CHURCH": ""},
		},
		{
			name: "serialized empty label",
			text: "CHURCH - ",
			want: ExclusionSet{"CHURCH": ""},
		},
		{
			name: "label containing separator",
			text: "42 - Engineering - Division A",
			want: ExclusionSet{"42": "Engineering - Division A"},
		},
		{
			name: "blank and padded lines",
			text: "\n   \n  A - Alpha  \n\nB\n",
			want: ExclusionSet{"A": "Alpha", "B": ""},
		},
		{
			name: "unparseable lines are skipped",
			text: "A - Alpha\n!!! nonsense\nnot-an-id - x\nB - Beta",
			want: ExclusionSet{"A": "Alpha", "B": "Beta"},
		},
		{
			name: "last duplicate wins",
			text: "A - First\nA - Second",
			want: ExclusionSet{"A": "Second"},
		},
		{
			name: "empty text",
			text: "",
			want: ExclusionSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseExclusions(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseExclusions(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestExclusionSetString(t *testing.T) {
	t.Run("sorted by serialized line", func(t *testing.T) {
		set := ExclusionSet{
			"b":  "Beta",
			"A":  "Alpha",
			"a":  "alpha",
			"10": "Ten",
			"9":  "Nine",
		}
		assert.Equal(t, "10 - Ten\n9 - Nine\nA - Alpha\na - alpha\nb - Beta", set.String())
	})

	t.Run("empty set", func(t *testing.T) {
		assert.Equal(t, "", ExclusionSet{}.String())
		assert.Equal(t, "", ExclusionSet(nil).String())
	})

	t.Run("empty label keeps separator", func(t *testing.T) {
		assert.Equal(t, "X - ", ExclusionSet{"X": ""}.String())
	})
}

func TestExclusionRoundTrip(t *testing.T) {
	sets := []ExclusionSet{
		{},
		{"A": "Alpha"},
		{"A": "", "B": "Beta"},
		{"42": "Springfield - North", "7": "Temporary Staff", "x_y": "Under_score"},
	}

	for _, set := range sets {
		got := ParseExclusions(set.String())
		if diff := cmp.Diff(set, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestExclusionSetHelpers(t *testing.T) {
	set := ExclusionSet{"A": "Alpha"}
	clone := set.Clone()
	clone["B"] = "Beta"

	assert.True(t, set.Has("A"))
	assert.False(t, set.Has("B"))
	assert.True(t, clone.Has("B"))
}
