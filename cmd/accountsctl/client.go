package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

// call hace el request e imprime la respuesta; un status no-2xx es error.
func (c *client) call(w io.Writer, name, method, path string, payload any) error {
	status, body, err := c.do(method, path, payload)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return fmt.Errorf("%s fallo: status=%d body=%s", name, status, strings.TrimSpace(string(body)))
	}
	c.print(w, status, body)
	return nil
}

func (c *client) print(w io.Writer, status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Fprintln(w, string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Fprintln(w, string(body))
	} else {
		fmt.Fprintf(w, "status=%d\n", status)
	}
}

func accountPath(class string, parts ...string) string {
	p := "/v1/accounts/" + url.PathEscape(class)
	for _, s := range parts {
		p += "/" + url.PathEscape(s)
	}
	return p
}
