package validator

import "testing"

type slotRequest struct {
	Date  string  `validate:"required,isodate"`
	Start string  `validate:"required,clock"`
	End   *string `validate:"omitempty,clock"`
}

func TestCustomTags(t *testing.T) {
	val := New()
	end := "10:30"

	if err := val.Struct(slotRequest{Date: "2024-05-01", Start: "09:00", End: &end}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	bad := []slotRequest{
		{Date: "01/05/2024", Start: "09:00"},
		{Date: "2024-05-01", Start: "9am"},
		{Date: "2024-05-01", Start: "25:00"},
	}
	for _, req := range bad {
		if err := val.Struct(req); err == nil {
			t.Errorf("expected validation error for %+v", req)
		}
	}
}
