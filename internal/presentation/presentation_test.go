package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/cardkit/internal/component"
)

func sampleManager(t *testing.T) *component.Manager {
	t.Helper()
	m := component.NewManager("table", []string{"team1"}, component.WithErrors(true))
	alice := component.NewPlayer("alice")
	hand := component.NewBunch("hand", component.WithUniqueKey(true))
	hand.SetOwner(alice)
	require.NoError(t, m.Add(hand, "team1"))
	ace := component.NewElement("ace")
	ace.SetMeta("rank", 1)
	require.NoError(t, hand.Add(ace))
	require.NoError(t, hand.Add(component.NewElement("ace"))) // recorded key_conflict
	return m
}

func TestFromManager(t *testing.T) {
	m := sampleManager(t)

	dto := FromManager(m)

	require.Equal(t, "table", dto.Manager)
	require.Equal(t, []string{"default", "virtual", "team1"}, dto.Scopes)
	require.Nil(t, dto.Meta)
	require.Len(t, dto.Bunches, 1)
	require.Equal(t, "team1", dto.Bunches[0].Scope)
	require.Equal(t, "hand", dto.Bunches[0].Key)
	require.Equal(t, "Component alice - Type: Player", dto.Bunches[0].Owner)
	require.Equal(t, component.LibraryKey, dto.Library.Key)
	require.Len(t, *dto.Library.Items, 1)
	require.Len(t, dto.Errors, 1)
	require.Equal(t, component.CodeKeyConflict, dto.Errors[0].Code)
	require.Equal(t, "Component hand - Type: Bunch - Owner: alice - Items: 1", dto.Errors[0].Initiator)
	require.Equal(t, "Component ace - Type: Element", dto.Errors[0].Target)
}

func TestFromBunches_Unregistered(t *testing.T) {
	m := component.NewManager("table", nil)
	loose := component.NewBunch("loose")

	dtos := FromBunches(m, []*component.Bunch{loose})

	require.Len(t, dtos, 1)
	require.Empty(t, dtos[0].Scope)
	require.Equal(t, "loose", dtos[0].Key)
}

func TestFromErrors_Empty(t *testing.T) {
	require.Nil(t, FromErrors(nil))
}

func TestFormatter_JSON(t *testing.T) {
	m := sampleManager(t)
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, "")
	require.NoError(t, err)

	require.NoError(t, f.FormatBunches(FromBunches(m, m.Items())))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "team1", got[0]["scope"])
	require.Equal(t, "hand", got[0]["key"], "object fields are flattened")
	require.Equal(t, "bunch", got[0]["type"])
	items := got[0]["items"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, map[string]any{"rank": float64(1)}, items[0].(map[string]any)["meta"])
}

func TestFormatter_YAML(t *testing.T) {
	m := sampleManager(t)
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatYAML)
	require.NoError(t, err)

	require.NoError(t, f.FormatTable(FromManager(m)))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "table", got["manager"])
	bunches := got["bunches"].([]any)
	require.Equal(t, "hand", bunches[0].(map[string]any)["key"])
	require.Equal(t, "team1", bunches[0].(map[string]any)["scope"])
	require.Contains(t, got, "errors")
}

func TestFormatter_EmptyErrorsIsList(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatJSON)
	require.NoError(t, err)

	require.NoError(t, f.FormatErrors(nil))
	require.JSONEq(t, "[]", buf.String())
}

func TestFormatter_ObjectsWithoutItems(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatJSON)
	require.NoError(t, err)

	e := component.NewElement("ace")
	require.NoError(t, f.FormatObjects(FromElements([]*component.Element{e})))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.NotContains(t, got[0], "items")
	require.NotContains(t, got[0], "owner")
	require.NotContains(t, got[0], "meta")
}

func TestNewFormatter_Unknown(t *testing.T) {
	_, err := NewFormatter(&bytes.Buffer{}, "xml")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"xml"`)
}
