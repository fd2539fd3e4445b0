package rawhttp_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/rawhttp"
	"github.com/adamwoolhether/rawhttp/client"
)

func ExampleNewClient() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"msg":"hello"}`)
	}))
	defer ts.Close()

	c, err := rawhttp.NewClient(client.WithTimeout(5 * time.Second))
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	req, err := rawhttp.NewRequest(ts.URL)
	if err != nil {
		fmt.Println("request error:", err)
		return
	}

	var resp struct{ Msg string }
	if err := c.Do(context.Background(), req, http.StatusOK, client.WithDestination(&resp)); err != nil {
		fmt.Println("do error:", err)
		return
	}

	fmt.Println(resp.Msg)
	// Output: hello
}

func ExampleCall() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello")
	}))
	defer ts.Close()

	resp, err := rawhttp.Call(context.Background(), ts.URL+"/greeting")
	if err != nil {
		fmt.Println("call error:", err)
		return
	}
	defer resp.Close()

	body, _ := io.ReadAll(resp)
	fmt.Println(resp.StatusCode, string(body))
	// Output: 200 hello
}

func ExampleNewRequest() {
	req, err := rawhttp.NewRequest("http://purple.com:2365")
	if err != nil {
		fmt.Println("request error:", err)
		return
	}

	fmt.Printf("%q\n", req.Bytes("GET", nil))
	// Output: "GET / HTTP/1.1\r\nHost: purple.com\r\nConnection: close\r\nContent-Length: 0\r\n\r\n"
}
