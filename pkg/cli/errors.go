package cli

import (
	"errors"
	"fmt"

	"github.com/novainsilico/jinkoctl/pkg/jinko"
)

// FormatConnectionError returns a user-friendly message for connection
// failures against the API.
func FormatConnectionError(err error) string {
	var apiErr *jinko.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode == "connection_error" {
		return fmt.Sprintf(`%s

Suggestions:
  • Check your network connection
  • Verify the base URL with: jinkoctl config
  • Override it with --base-url or JINKO_BASE_URL`, apiErr.Message)
	}
	return err.Error()
}
