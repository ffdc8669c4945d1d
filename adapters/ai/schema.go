package ai

import "github.com/xeipuuv/gojsonschema"

// Structural schemas for collaborator responses. Suggestion content is
// opaque; validation only guards the envelope shape the orchestrators
// depend on.

const questionResponseSchema = `{
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": {"type": "boolean"},
    "error": {"type": "string"},
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "text"],
        "properties": {
          "id": {"type": "string"},
          "text": {"type": "string"}
        }
      }
    }
  }
}`

const estimateResponseSchema = `{
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": {"type": "boolean"},
    "error": {"type": "string"},
    "activities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["code"],
        "properties": {
          "code": {"type": "string"}
        }
      }
    },
    "confidence_score": {"type": "number"}
  }
}`

const bulkEstimateResponseSchema = `{
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": {"type": "boolean"},
    "error": {"type": "string"},
    "estimations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["requirement_id", "success"],
        "properties": {
          "requirement_id": {"type": "string"},
          "success": {"type": "boolean"}
        }
      }
    }
  }
}`

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("invalid embedded schema: " + err.Error())
	}
	return schema
}

var (
	questionSchema     = mustSchema(questionResponseSchema)
	estimateSchema     = mustSchema(estimateResponseSchema)
	bulkEstimateSchema = mustSchema(bulkEstimateResponseSchema)
)
