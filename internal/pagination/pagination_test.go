package pagination

import "testing"

func TestDefaults(t *testing.T) {
	var req PageRequest
	req.Defaults()

	if req.Page != 1 || req.PageSize != 20 {
		t.Errorf("expected defaults 1/20, got %d/%d", req.Page, req.PageSize)
	}
}

func TestOffset(t *testing.T) {
	req := PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("expected offset 50, got %d", got)
	}
}

func TestNewPageResponseRoundsPagesUp(t *testing.T) {
	resp := NewPageResponse([]int{1, 2}, 1, 2, 5)

	if resp.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", resp.TotalPages)
	}
	if resp.TotalItems != 5 {
		t.Errorf("expected 5 total items, got %d", resp.TotalItems)
	}
}

func TestNewPageResponseNilDataBecomesEmptySlice(t *testing.T) {
	resp := NewPageResponse[int](nil, 1, 20, 0)

	if resp.Data == nil {
		t.Error("expected an empty slice, got nil")
	}
	if resp.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", resp.TotalPages)
	}
}
