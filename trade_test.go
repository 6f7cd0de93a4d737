package tradebook

import (
	"encoding/json"
	"testing"
)

func TestTrade_MarshalJSON_CreatedAt(t *testing.T) {
	// A trade proto that was never recorded has no timestamp to report.
	proto := Trade{ID: "t1", Ticker: "AAPL", Side: Buy, Price: P(100), Quantity: Q(10)}
	b, err := json.Marshal(proto)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		t.Fatal(err)
	}
	if _, ok := fields["createdAt"]; ok {
		t.Errorf("unset createdAt was rendered: %s", b)
	}

	recorded := NewTrade("AAPL", Buy, P(100), Q(10))
	b, err = json.Marshal(recorded)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	fields = nil
	if err := json.Unmarshal(b, &fields); err != nil {
		t.Fatal(err)
	}
	if v, ok := fields["createdAt"].(string); !ok || v == "" {
		t.Errorf("recorded trade missing createdAt: %s", b)
	}
}
