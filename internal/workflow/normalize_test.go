package workflow

import "testing"

func TestNormalizeDateOnly(t *testing.T) {
	r, fields := NormalizeEventRange("2025-06-01", "", "", "")
	if fields != nil {
		t.Fatalf("unexpected errors: %v", fields)
	}
	if r.Start != "2025-06-01 00:00:00" || r.HasStartTime {
		t.Fatalf("got %+v", r)
	}
	if r.End != nil || r.HasEndTime {
		t.Fatalf("end must be empty: %+v", r)
	}

	again, _ := NormalizeEventRange("2025-06-01", "", "", "")
	if again.Start != r.Start || again.HasStartTime != r.HasStartTime {
		t.Fatal("normalization is not deterministic")
	}
}

func TestNormalizeWithTimes(t *testing.T) {
	r, fields := NormalizeEventRange("2025-06-01", "09:30", "2025-06-02", "")
	if fields != nil {
		t.Fatalf("unexpected errors: %v", fields)
	}
	if r.Start != "2025-06-01 09:30:00" || !r.HasStartTime {
		t.Fatalf("start = %+v", r)
	}
	if r.End == nil || *r.End != "2025-06-02 23:59:59" || r.HasEndTime {
		t.Fatalf("end = %+v", r)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	cases := [][4]string{
		{"2025-06-01", "", "2025-06-03", ""},
		{"2025-06-01", "18:00", "2025-06-01", "20:15:30"},
	}
	for _, c := range cases {
		first, fields := NormalizeEventRange(c[0], c[1], c[2], c[3])
		if fields != nil {
			t.Fatalf("%v: %v", c, fields)
		}
		second, fields := NormalizeEventRange(first.Start, "", *first.End, "")
		if fields != nil {
			t.Fatalf("%v renormalize: %v", c, fields)
		}
		if second.Start != first.Start || *second.End != *first.End ||
			second.HasStartTime != first.HasStartTime || second.HasEndTime != first.HasEndTime {
			t.Fatalf("%v: %+v != %+v", c, second, first)
		}
	}
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name             string
		from, tf, to, tt string
		field            string
	}{
		{"missing start", "", "", "", "", "event_date_from"},
		{"bad date", "2025/06/01", "", "", "", "event_date_from"},
		{"bad time", "2025-06-01", "25:00", "", "", "event_date_from"},
		{"end before start", "2025-06-02", "", "2025-06-01", "", "event_date_to"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, fields := NormalizeEventRange(c.from, c.tf, c.to, c.tt)
			if fields[c.field] == "" {
				t.Fatalf("expected error on %s, got %v", c.field, fields)
			}
		})
	}
}
