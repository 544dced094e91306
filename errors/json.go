package errors

import "encoding/json"

// ErrorResponse is the flat JSON form of an error. The cause chain is left
// out on purpose; context fields carry the useful detail.
type ErrorResponse struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Classification string                 `json:"classification"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

// ToJSON converts any error to an ErrorResponse. Returns nil if err is nil.
func ToJSON(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	resp := &ErrorResponse{
		Code:           string(GetCode(err)),
		Message:        err.Error(),
		Classification: string(GetClassification(err)),
	}

	var pe PathError
	if As(err, &pe) {
		resp.Message = pe.Message()
		resp.Context = pe.Context()
	}
	return resp
}

// MarshalJSON renders the error through ErrorResponse.
func (e *pathError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&ErrorResponse{
		Code:           string(e.code),
		Message:        e.message,
		Classification: string(e.classification),
		Context:        e.context,
	})
}
