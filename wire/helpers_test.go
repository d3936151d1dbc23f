package wire

import (
	"testing"

	"github.com/lumera-tools/protolite/record"
	"github.com/lumera-tools/protolite/schema"
)

// testDescriptors holds a linked message set covering every field kind.
type testDescriptors struct {
	color *schema.Enum
	inner *schema.Message
	tags  *schema.Message
	outer *schema.Message
	node  *schema.Message
}

func newTestDescriptors(t *testing.T) *testDescriptors {
	t.Helper()

	color := &schema.Enum{Name: "test.Color", Values: []*schema.EnumValue{
		{Name: "COLOR_UNSPECIFIED", Number: 0},
		{Name: "COLOR_RED", Number: 1},
		{Name: "COLOR_BLUE", Number: 2},
	}}
	inner := &schema.Message{Name: "test.Inner", Fields: []*schema.Field{
		{Name: "name", Number: 1, Kind: schema.KindString},
		{Name: "height", Number: 2, Kind: schema.KindInt64},
	}}
	tags := &schema.Message{Name: "test.Outer.TagsEntry", MapEntry: true, Fields: []*schema.Field{
		{Name: "key", Number: 1, Kind: schema.KindString},
		{Name: "value", Number: 2, Kind: schema.KindInt64},
	}}
	outer := &schema.Message{Name: "test.Outer", Fields: []*schema.Field{
		{Name: "flag", Number: 1, Kind: schema.KindBool},
		{Name: "count", Number: 2, Kind: schema.KindInt32},
		{Name: "big", Number: 3, Kind: schema.KindInt64},
		{Name: "unsigned", Number: 4, Kind: schema.KindUint64},
		{Name: "ratio", Number: 5, Kind: schema.KindDouble},
		{Name: "label", Number: 6, Kind: schema.KindString},
		{Name: "blob", Number: 7, Kind: schema.KindBytes},
		{Name: "color", Number: 8, Kind: schema.KindEnum, TypeName: color.Name},
		{Name: "inner", Number: 9, Kind: schema.KindMessage, TypeName: inner.Name},
		{Name: "items", Number: 10, Kind: schema.KindInt64, Label: schema.LabelRepeated},
		{Name: "children", Number: 11, Kind: schema.KindMessage, TypeName: inner.Name, Label: schema.LabelRepeated},
		{Name: "tags", Number: 12, Kind: schema.KindMessage, TypeName: tags.Name, Label: schema.LabelRepeated},
		{Name: "names", Number: 13, Kind: schema.KindString, Label: schema.LabelRepeated},
	}}
	node := &schema.Message{Name: "test.Node", Fields: []*schema.Field{
		{Name: "child", Number: 1, Kind: schema.KindMessage, TypeName: "test.Node"},
		{Name: "value", Number: 2, Kind: schema.KindInt32},
	}}

	outer.FieldByNumber(8).ResolveEnum(color)
	outer.FieldByNumber(9).ResolveMessage(inner)
	outer.FieldByNumber(11).ResolveMessage(inner)
	outer.FieldByNumber(12).ResolveMessage(tags)
	node.FieldByNumber(1).ResolveMessage(node)

	if err := color.Link(); err != nil {
		t.Fatalf("link %s: %v", color.Name, err)
	}
	for _, m := range []*schema.Message{inner, tags, outer, node} {
		if err := m.Link(nil); err != nil {
			t.Fatalf("link %s: %v", m.Name, err)
		}
	}
	return &testDescriptors{color: color, inner: inner, tags: tags, outer: outer, node: node}
}

func mustSet(t *testing.T, rec *record.Record, name string, v any) {
	t.Helper()
	if err := rec.Set(name, v); err != nil {
		t.Fatalf("set %s: %v", name, err)
	}
}

func mustGet(t *testing.T, rec *record.Record, name string) any {
	t.Helper()
	v, err := rec.Get(name)
	if err != nil {
		t.Fatalf("get %s: %v", name, err)
	}
	return v
}

func (td *testDescriptors) newInner(t *testing.T, name string, height int64) *record.Record {
	t.Helper()
	rec := record.New(td.inner)
	mustSet(t, rec, "name", name)
	mustSet(t, rec, "height", height)
	return rec
}

// chain builds a Node nested depth levels below the returned root.
func (td *testDescriptors) chain(t *testing.T, depth int) *record.Record {
	t.Helper()
	// built leaf first, since Set stores a copy of the child
	var cur *record.Record
	for i := depth; i >= 0; i-- {
		node := record.New(td.node)
		mustSet(t, node, "value", int32(i+1))
		if cur != nil {
			mustSet(t, node, "child", cur)
		}
		cur = node
	}
	return cur
}
