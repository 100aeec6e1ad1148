package thirdparty

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/emilythestrangee/reddit-companion/backend/internal/apiresult"
)

const maxBodyBytes = 4 << 20

var errInvalidJSON = errors.New("invalid JSON response")

// fetchJSON performs req and returns the raw body when it is a 2xx JSON document.
func fetchJSON(client *http.Client, req *http.Request) apiresult.Result[[]byte] {
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return apiresult.Failure[[]byte](0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apiresult.Failure[[]byte](0, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiresult.Failure[[]byte](resp.StatusCode, fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, http.StatusText(resp.StatusCode)))
	}
	if !gjson.ValidBytes(body) {
		return apiresult.Failure[[]byte](0, errInvalidJSON)
	}
	return apiresult.Success(body)
}
