package codec

import (
	"testing"

	"google.golang.org/grpc/encoding"
)

func TestJSON_Registered(t *testing.T) {
	c := encoding.GetCodec(Name)
	if c == nil {
		t.Fatal("json codec not registered")
	}
	if c.Name() != Name {
		t.Errorf("Name = %q, want %q", c.Name(), Name)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	type msg struct {
		EventID string `json:"event_id"`
		Count   int    `json:"count"`
	}
	data, err := JSON{}.Marshal(&msg{EventID: "evt-1", Count: 2})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"event_id":"evt-1","count":2}` {
		t.Errorf("Marshal = %s", data)
	}
	var out msg
	if err := (JSON{}).Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.EventID != "evt-1" || out.Count != 2 {
		t.Errorf("Unmarshal = %+v", out)
	}
}
