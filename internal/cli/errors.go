package cli

import (
	"errors"

	"github.com/depotcb/cbagent/internal/contract"
)

var codeMessages = map[contract.ErrorCode]string{
	contract.ErrUnparseableQuestion: "question could not be understood",
	contract.ErrInsufficientData:    "no data for this selection",
	contract.ErrInvalidArgument:     "invalid input",
	contract.ErrIncomparableWindows: "windows cannot be compared",
	contract.ErrStoreUnavailable:    "backing store unreachable",
	contract.ErrStoreQueryRejected:  "backing store rejected the query",
}

// UserMessage prefixes an analysis error with the message for its code.
// Other errors are returned as is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *contract.AnalysisError
	if errors.As(err, &ae) {
		if prefix, ok := codeMessages[ae.Code]; ok {
			return prefix + ": " + ae.Message
		}
	}
	return err.Error()
}
