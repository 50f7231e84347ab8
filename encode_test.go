package yamlbean_test

import (
	"context"
	"strings"
	"testing"
	"time"

	yamlbean "github.com/yamlbean/yamlbean"
	_ "github.com/yamlbean/yamlbean/codec"
)

type appointment struct {
	Surname string    `yamlbean:"alias=last_name"`
	When    time.Time `yamlbean:"converter=rfc3339"`
}

func TestMarshal_AppliesConverterAndPrimaryKey(t *testing.T) {
	c := yamlbean.NewConstructor()
	a := appointment{
		Surname: "Doe",
		When:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	out, err := c.Marshal(a)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "surname: Doe") {
		t.Fatalf("primary key not emitted: %s", s)
	}
	if !strings.Contains(s, "2025-03-01T09:00:00Z") {
		t.Fatalf("converter output missing: %s", s)
	}
}

func TestMarshal_RoundTripsWithUnmarshal(t *testing.T) {
	c := yamlbean.NewConstructor()
	orig := appointment{
		Surname: "Doe",
		When:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	out, err := c.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	var back appointment
	if err := c.Unmarshal(context.Background(), out, &back); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if back.Surname != orig.Surname || !back.When.Equal(orig.When) {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, orig)
	}
}

func TestMarshal_NestedAndSlices(t *testing.T) {
	type item struct {
		Name string
	}
	type box struct {
		Items []item
	}
	c := yamlbean.NewConstructor()
	out, err := c.Marshal(box{Items: []item{{Name: "a"}, {Name: "b"}}})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	var back box
	if err := c.Unmarshal(context.Background(), out, &back); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if len(back.Items) != 2 || back.Items[1].Name != "b" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
