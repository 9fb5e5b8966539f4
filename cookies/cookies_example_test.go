package cookies_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/jcrtools/httpx/cookies"
)

func ExampleDropMatching() {
	req := httptest.NewRequest(http.MethodPost, "/cookies/drop", nil)
	req.Header.Set("Cookie", "track_a=1; session=abc; track_b=2")
	rec := httptest.NewRecorder()

	n, err := cookies.DropMatching(cookies.FromRequest(req), rec, "/", "track_.*")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(n)
	for _, line := range rec.Header().Values("Set-Cookie") {
		fmt.Println(line)
	}
	// Output:
	// 2
	// track_a=1; Path=/; Max-Age=0
	// track_b=2; Path=/; Max-Age=0
}

func ExampleExtendLife() {
	// Max-Age is only known from Set-Cookie lines.
	upstream := http.Header{"Set-Cookie": {"sid=abc; Path=/; Max-Age=60"}}
	rec := httptest.NewRecorder()

	ok := cookies.ExtendLife(cookies.FromResponse(upstream), rec, "sid", "/content", 1800)
	fmt.Println(ok)
	fmt.Println(rec.Header().Get("Set-Cookie"))
	// Output:
	// true
	// sid=abc; Path=/content; Max-Age=1800
}
