package history_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/chmigrate/chmigrate/migration/history"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name    string
		records []history.Record
		want    int
	}{
		{
			name:    "empty history",
			records: nil,
			want:    0,
		},
		{
			name: "newest up",
			records: []history.Record{
				{Version: 3, Status: history.StatusUp},
				{Version: 3, Status: history.StatusDirtyUp},
			},
			want: 3,
		},
		{
			name: "newest down counts as reverted",
			records: []history.Record{
				{Version: 3, Status: history.StatusDown},
				{Version: 3, Status: history.StatusUp},
			},
			want: 2,
		},
		{
			name: "newest dirty_up still counts its version",
			records: []history.Record{
				{Version: 4, Status: history.StatusDirtyUp},
				{Version: 3, Status: history.StatusUp},
			},
			want: 4,
		},
		{
			name: "newest dirty_down still counts its version",
			records: []history.Record{
				{Version: 4, Status: history.StatusDirtyDown},
				{Version: 4, Status: history.StatusUp},
			},
			want: 4,
		},
		{
			name: "down at version one reverts to zero",
			records: []history.Record{
				{Version: 1, Status: history.StatusDown},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(history.Position(tt.records), qt.Equals, tt.want)
		})
	}
}
