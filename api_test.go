package yamlbean_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	yamlbean "github.com/yamlbean/yamlbean"
)

type animal interface{ isAnimal() }

type cat struct {
	Name string
}

func (cat) isAnimal() {}

type dog struct {
	Name  string
	Breed string
}

func (dog) isAnimal() {}

type owner struct {
	Name string
	Pet  animal
}

func registerAnimals(c *yamlbean.Constructor) {
	c.RegisterSubstitutionTypes(yamlbean.TypeOf[animal](),
		reflect.TypeOf(cat{}), reflect.TypeOf(dog{}))
}

func TestUnmarshal_PlainStruct(t *testing.T) {
	var o owner
	err := yamlbean.NewConstructor().Unmarshal(context.Background(), []byte("name: Alice\n"), &o)
	if err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if o.Name != "Alice" {
		t.Fatalf("unexpected name: %q", o.Name)
	}
}

func TestUnmarshal_SubstitutionPicksFirstMatching(t *testing.T) {
	// {name: Fluffy} matches both cat and dog; cat wins by declaration order.
	c := yamlbean.NewConstructor()
	registerAnimals(c)
	var o owner
	err := c.Unmarshal(context.Background(), []byte("pet: {name: Fluffy}\n"), &o)
	if err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	got, ok := o.Pet.(cat)
	if !ok {
		t.Fatalf("expected cat, got %T", o.Pet)
	}
	if got.Name != "Fluffy" {
		t.Fatalf("unexpected pet name: %q", got.Name)
	}
}

func TestUnmarshal_SubstitutionNarrowsByKeys(t *testing.T) {
	c := yamlbean.NewConstructor()
	registerAnimals(c)
	var o owner
	err := c.Unmarshal(context.Background(), []byte("pet: {name: Rex, breed: collie}\n"), &o)
	if err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	got, ok := o.Pet.(dog)
	if !ok {
		t.Fatalf("expected dog, got %T", o.Pet)
	}
	if got.Breed != "collie" {
		t.Fatalf("unexpected breed: %q", got.Breed)
	}
}

func TestUnmarshal_UnknownKeyIsFatal(t *testing.T) {
	var o owner
	err := yamlbean.NewConstructor().Unmarshal(context.Background(), []byte("nme: Alice\n"), &o)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	iss, ok := yamlbean.AsIssues(err)
	if !ok || iss[0].Code != yamlbean.CodeUnknownKey {
		t.Fatalf("expected unknown_key issue, got %v", err)
	}
	if !strings.Contains(iss[0].Message, "nme") {
		t.Fatalf("issue should name the offending key: %v", iss[0])
	}
}

func TestUnmarshal_Alias(t *testing.T) {
	type person struct {
		Surname string `yamlbean:"alias=last_name"`
	}
	var p person
	err := yamlbean.NewConstructor().Unmarshal(context.Background(), []byte("last_name: Doe\n"), &p)
	if err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if p.Surname != "Doe" {
		t.Fatalf("alias not resolved: %+v", p)
	}
}

func TestUnmarshal_CaseInsensitive(t *testing.T) {
	var o owner
	c := yamlbean.NewConstructor(yamlbean.CaseInsensitive())
	if err := c.Unmarshal(context.Background(), []byte("NAME: Alice\n"), &o); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if o.Name != "Alice" {
		t.Fatalf("case-insensitive match failed: %+v", o)
	}

	// The same document must fail on a case-sensitive instance.
	if err := yamlbean.NewConstructor().Unmarshal(context.Background(), []byte("NAME: Alice\n"), &o); err == nil {
		t.Fatalf("expected unknown_key on case-sensitive instance")
	}
}

func TestUnmarshal_IgnoreExceptionsLeavesFieldZero(t *testing.T) {
	type person struct {
		Name string
		Age  int `yamlbean:"ignore"`
	}
	var p person
	err := yamlbean.NewConstructor().Unmarshal(context.Background(), []byte("name: Bob\nage: notanumber\n"), &p)
	if err != nil {
		t.Fatalf("construction should survive the bad property: %v", err)
	}
	if p.Name != "Bob" || p.Age != 0 {
		t.Fatalf("unexpected result: %+v", p)
	}
}

func TestUnmarshal_IgnoreExceptionsStillAssignsGoodValues(t *testing.T) {
	type person struct {
		Name string
		Age  int `yamlbean:"ignore"`
	}
	var p person
	err := yamlbean.NewConstructor().Unmarshal(context.Background(), []byte("name: Bob\nage: 7\n"), &p)
	if err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if p.Age != 7 {
		t.Fatalf("valid value should still be assigned: %+v", p)
	}
}

func TestUnmarshal_ReusableAcrossDocuments(t *testing.T) {
	c := yamlbean.NewConstructor()
	registerAnimals(c)
	for _, doc := range []string{"pet: {name: A}\n", "pet: {name: B, breed: pug}\n"} {
		var o owner
		if err := c.Unmarshal(context.Background(), []byte(doc), &o); err != nil {
			t.Fatalf("unmarshal %q err: %v", doc, err)
		}
		if o.Pet == nil {
			t.Fatalf("no pet constructed for %q", doc)
		}
	}
}

func TestConstruct_RejectsNonPointerTarget(t *testing.T) {
	var o owner
	err := yamlbean.NewConstructor().Unmarshal(context.Background(), []byte("name: x\n"), o)
	if err == nil {
		t.Fatalf("expected target_invalid error")
	}
	iss, _ := yamlbean.AsIssues(err)
	if len(iss) == 0 || iss[0].Code != yamlbean.CodeTargetInvalid {
		t.Fatalf("expected target_invalid, got %v", err)
	}
}
