package borg

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/borg-exporter/internal/errs"

	"github.com/xeipuuv/gojsonschema"
)

// StatusDocument is the subset of `borg info --json` the exporter reads.
// Everything else in the document (encryption, security_dir, cache.path,
// archives...) is accepted and dropped.
type StatusDocument struct {
	Repository RepositoryInfo `json:"repository"`
	Cache      CacheInfo      `json:"cache"`
}

type RepositoryInfo struct {
	ID           string `json:"id,omitempty"`
	Location     string `json:"location,omitempty"`
	LastModified string `json:"last_modified"`
}

type CacheInfo struct {
	Stats CacheStats `json:"stats"`
}

type CacheStats struct {
	TotalChunks       uint64 `json:"total_chunks"`
	TotalCSize        uint64 `json:"total_csize"`
	TotalSize         uint64 `json:"total_size"`
	TotalUniqueChunks uint64 `json:"total_unique_chunks"`
	UniqueCSize       uint64 `json:"unique_csize"`
	UniqueSize        uint64 `json:"unique_size"`
}

// statusSchema only lists what must be present. additionalProperties is
// left at its default (true) at every level.
const statusSchema = `{
  "type": "object",
  "required": ["repository", "cache"],
  "properties": {
    "repository": {
      "type": "object",
      "required": ["last_modified"],
      "properties": {
        "last_modified": {"type": "string"}
      }
    },
    "cache": {
      "type": "object",
      "required": ["stats"],
      "properties": {
        "stats": {
          "type": "object",
          "required": [
            "total_chunks", "total_csize", "total_size",
            "total_unique_chunks", "unique_csize", "unique_size"
          ],
          "properties": {
            "total_chunks":        {"type": "integer", "minimum": 0},
            "total_csize":         {"type": "integer", "minimum": 0},
            "total_size":          {"type": "integer", "minimum": 0},
            "total_unique_chunks": {"type": "integer", "minimum": 0},
            "unique_csize":        {"type": "integer", "minimum": 0},
            "unique_size":         {"type": "integer", "minimum": 0}
          }
        }
      }
    }
  }
}`

var compiledStatusSchema = func() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(statusSchema))
	if err != nil {
		panic(fmt.Sprintf("borg: invalid status schema: %v", err))
	}
	return schema
}()

// ParseStatus validates and decodes the output of `borg info --json`.
func ParseStatus(data []byte) (*StatusDocument, error) {
	if !json.Valid(data) {
		return nil, errs.Newf(errs.Parse, "", "response is not valid JSON")
	}

	result, err := compiledStatusSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, errs.New(errs.Parse, "", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, errs.Newf(errs.Parse, "", "%s", strings.Join(problems, "; "))
	}

	var doc StatusDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.New(errs.Parse, "", err)
	}
	return &doc, nil
}
