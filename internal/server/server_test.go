package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fredc1/propagate-uncertainty-project/internal/config"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.MaxUploadBytes = 4096
	srv := httptest.NewServer(New(cfg, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

// submit posts an expression and returns the response and session cookie.
func submit(t *testing.T, srv *httptest.Server, expr string) (*http.Response, *http.Cookie) {
	t.Helper()
	resp, err := http.PostForm(srv.URL+"/expression", url.Values{"expression": {expr}})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return resp, c
		}
	}
	return resp, nil
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestFunctions(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/functions")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var fr functionsResponse
	decode(t, resp, &fr)
	if fr.Operators != "+-*/^()[]{}" {
		t.Errorf("wrong operators %q", fr.Operators)
	}
	if len(fr.Functions) != 27 || fr.Functions[0].Name != "acos" {
		t.Errorf("wrong functions %+v", fr.Functions)
	}

	resp, err = http.Post(srv.URL+"/functions", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /functions gave status %d", resp.StatusCode)
	}
}

func TestExpression(t *testing.T) {
	srv := testServer(t)
	resp, cookie := submit(t, srv, "x + y^2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if cookie == nil {
		t.Fatal("no session cookie")
	}
	var er expressionResponse
	decode(t, resp, &er)
	if er.Expression != "x+y^2" || strings.Join(er.Variables, ",") != "x,y" {
		t.Errorf("wrong response %+v", er)
	}
	if strings.Join(er.Columns, ",") != "x,x_uncertainty,y,y_uncertainty" {
		t.Errorf("wrong columns %q", er.Columns)
	}
}

func TestExpressionErrors(t *testing.T) {
	srv := testServer(t)
	cases := []struct {
		expr string
		msg  string
	}{
		{"for(x)", `"for" is not a function`},
		{"x$y", `The character '$' is not allowed`},
		{"(}", "The brackets do not match"},
		{"x+", "cannot be evaluated"},
		{"", "cannot be evaluated"},
		{"x" + strings.Repeat("-x", 1100), "nested too deeply"},
	}
	for _, c := range cases {
		resp, cookie := submit(t, srv, c.expr)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%q gave status %d", c.expr, resp.StatusCode)
		}
		if cookie != nil {
			t.Errorf("%q started a session", c.expr)
		}
		var e errorResponse
		decode(t, resp, &e)
		if !strings.Contains(e.Error, c.msg) {
			t.Errorf("%q: message %q does not contain %q", c.expr, e.Error, c.msg)
		}
	}
}

func evaluate(t *testing.T, srv *httptest.Server, cookie *http.Cookie, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/evaluate", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestEvaluate(t *testing.T) {
	srv := testServer(t)
	resp, cookie := submit(t, srv, "x-x+y")
	resp.Body.Close()
	body := `{"measurements":[{"name":"x","value":"2","uncertainty":"0.5"},{"name":"y","value":"1.5","uncertainty":"0.25"}]}`
	resp = evaluate(t, srv, cookie, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var r evaluateResponse
	decode(t, resp, &r)
	if r.Value != 1.5 || r.Uncertainty != 0.25 || r.Text != "1.5+/-0.25" {
		t.Errorf("wrong result %+v", r)
	}

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"malformed", `{"measurements":[{"name":"x","value":"-3.5.2","uncertainty":"0"},{"name":"y","value":"1","uncertainty":"0"}]}`, `"-3.5.2"`},
		{"negative", `{"measurements":[{"name":"x","value":"1","uncertainty":"-1"},{"name":"y","value":"1","uncertainty":"0"}]}`, "negative"},
		{"missing", `{"measurements":[{"name":"x","value":"1","uncertainty":"0"}]}`, "missing"},
		{"json", `{"measurements":`, "not valid JSON"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := evaluate(t, srv, cookie, c.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status %d", resp.StatusCode)
			}
			var e errorResponse
			decode(t, resp, &e)
			if !strings.Contains(e.Error, c.msg) {
				t.Errorf("message %q does not contain %q", e.Error, c.msg)
			}
		})
	}
}

func TestEvaluateNotFinite(t *testing.T) {
	srv := testServer(t)
	resp, cookie := submit(t, srv, "x*sqrt(x)")
	resp.Body.Close()
	resp = evaluate(t, srv, cookie, `{"measurements":[{"name":"x","value":"0","uncertainty":"0.1"}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d", resp.StatusCode)
	}
	var e errorResponse
	decode(t, resp, &e)
	if !strings.Contains(e.Error, "not finite") {
		t.Errorf("wrong message %q", e.Error)
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	s := New(config.Default(), zerolog.Nop())
	rec := httptest.NewRecorder()
	s.writeJSON(rec, http.StatusOK, evaluateResponse{Value: 0, Uncertainty: math.Inf(1)})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status %d", rec.Code)
	}
	var e errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("body %q: %v", rec.Body.String(), err)
	}
	if !strings.Contains(e.Error, "could not be encoded") {
		t.Errorf("wrong message %q", e.Error)
	}
}

func TestEvaluateNoSession(t *testing.T) {
	srv := testServer(t)
	resp := evaluate(t, srv, nil, `{"measurements":[]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = evaluate(t, srv, &http.Cookie{Name: SessionCookie, Value: "not-a-uuid"}, `{"measurements":[]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func upload(t *testing.T, srv *httptest.Server, cookie *http.Cookie, data string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	f, err := w.CreateFormFile("data", "data.csv")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(f, data)
	w.Close()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/upload", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestUpload(t *testing.T) {
	srv := testServer(t)
	resp, cookie := submit(t, srv, "a*b")
	resp.Body.Close()
	resp = upload(t, srv, cookie, "a,a_uncertainty,b,b_uncertainty\n1,0,2,0.5\n3,0,4,0\n")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Errorf("content disposition %q", cd)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	want := "a,a_uncertainty,b,b_uncertainty,a*b,expression_uncertainty\n1,0,2,0.5,2,0.5\n3,0,4,0,12,0\n"
	if string(b) != want {
		t.Errorf("wrong table:\nwant %q\ngot  %q", want, b)
	}
}

func TestUploadErrors(t *testing.T) {
	srv := testServer(t)
	resp, cookie := submit(t, srv, "a*b")
	resp.Body.Close()
	cases := []struct {
		name   string
		data   string
		status int
		msg    string
	}{
		{"columns", "a,b\n1,2\n", http.StatusBadRequest, "a,a_uncertainty,b,b_uncertainty"},
		{"row", "a,a_uncertainty,b,b_uncertainty\n1,0,2,0\n1,x,2,0\n", http.StatusBadRequest, "Line 3"},
		{"large", "a,a_uncertainty,b,b_uncertainty\n" + strings.Repeat("1,0,2,0\n", 1000), http.StatusRequestEntityTooLarge, "larger than"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := upload(t, srv, cookie, c.data)
			if resp.StatusCode != c.status {
				t.Errorf("status %d, want %d", resp.StatusCode, c.status)
			}
			var e errorResponse
			decode(t, resp, &e)
			if !strings.Contains(e.Error, c.msg) {
				t.Errorf("message %q does not contain %q", e.Error, c.msg)
			}
		})
	}
}
