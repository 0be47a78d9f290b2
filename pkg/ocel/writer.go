package ocel

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"time"

	"github.com/procflow/procflow/pkg/errors"
)

// OCEL 2.0 JSON export. Serialization happens only at this external
// boundary; between pipeline stages the log stays in memory.

type jsonDocument struct {
	ObjectTypes []jsonType   `json:"objectTypes"`
	EventTypes  []jsonType   `json:"eventTypes"`
	Objects     []jsonObject `json:"objects"`
	Events      []jsonEvent  `json:"events"`
}

type jsonType struct {
	Name       string     `json:"name"`
	Attributes []struct{} `json:"attributes"`
}

type jsonObject struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type jsonEvent struct {
	ID            string             `json:"id"`
	Type          string             `json:"type"`
	Time          string             `json:"time"`
	Relationships []jsonRelationship `json:"relationships"`
}

type jsonRelationship struct {
	ObjectID  string `json:"objectId"`
	Qualifier string `json:"qualifier"`
}

// WriteJSON serializes the log in OCEL 2.0 JSON format.
func WriteJSON(log *Log, w io.Writer) error {
	doc := jsonDocument{}

	for _, t := range log.ObjectTypes() {
		doc.ObjectTypes = append(doc.ObjectTypes, jsonType{Name: t, Attributes: []struct{}{}})
	}

	eventTypes := make(map[string]bool)
	for _, e := range log.Events {
		eventTypes[e.Activity] = true
	}
	names := make([]string, 0, len(eventTypes))
	for n := range eventTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		doc.EventTypes = append(doc.EventTypes, jsonType{Name: n, Attributes: []struct{}{}})
	}

	oids := make([]ObjectID, 0, len(log.Objects))
	for oid := range log.Objects {
		oids = append(oids, oid)
	}
	sort.Slice(oids, func(i, j int) bool {
		if oids[i].Type != oids[j].Type {
			return oids[i].Type < oids[j].Type
		}
		return oids[i].ID < oids[j].ID
	})
	for _, oid := range oids {
		doc.Objects = append(doc.Objects, jsonObject{ID: oid.Type + ":" + oid.ID, Type: oid.Type})
	}

	types := log.ObjectTypes()
	for _, e := range log.Events {
		je := jsonEvent{
			ID:   e.ID,
			Type: e.Activity,
			Time: e.Timestamp.Format(time.RFC3339),
		}
		for _, typ := range types {
			for _, id := range e.Refs(typ) {
				je.Relationships = append(je.Relationships, jsonRelationship{
					ObjectID:  typ + ":" + id,
					Qualifier: typ,
				})
			}
		}
		doc.Events = append(doc.Events, je)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to encode OCEL JSON")
	}
	return nil
}

// WriteJSONFile serializes the log to a file, created or truncated.
func WriteJSONFile(log *Log, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create OCEL export").
			WithContext("path", path)
	}
	defer f.Close()
	return WriteJSON(log, f)
}
