package swift

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"slices"
	"testing"

	"github.com/kbukum/swiftkit/errors"
	"github.com/kbukum/swiftkit/swifttest"
)

func seedObjects(t *testing.T, c *Client, container string, names ...string) {
	t.Helper()
	ctx := context.Background()
	if _, err := c.PutContainer(ctx, container, nil); err != nil {
		t.Fatalf("PutContainer: %v", err)
	}
	for _, name := range names {
		if _, err := c.PutObject(ctx, container, name, name, nil); err != nil {
			t.Fatalf("PutObject %s: %v", name, err)
		}
	}
}

func listMarkers(t *testing.T, srv *swifttest.Server) []string {
	t.Helper()
	var markers []string
	for _, r := range srv.Requests() {
		if r.Method != http.MethodGet {
			continue
		}
		q, err := url.ParseQuery(r.RawQuery)
		if err != nil {
			t.Fatalf("parse query %q: %v", r.RawQuery, err)
		}
		markers = append(markers, q.Get("marker"))
	}
	return markers
}

func TestPaginateObjects(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())
	seedObjects(t, c, "c", "d", "b", "a", "c")
	srv.ResetRequests()

	query := map[string]string{"limit": "2"}
	var names []string
	var sizes []int
	for page, err := range c.PaginateObjects(context.Background(), "c", query) {
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		sizes = append(sizes, len(page.Entries))
		for _, e := range page.Entries {
			names = append(names, e.Name())
		}
	}

	if want := []string{"a", "b", "c", "d"}; !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 2 {
		t.Errorf("page sizes = %v, want [2 2]", sizes)
	}
	if got, want := listMarkers(t, srv), []string{"", "b", "d"}; !slices.Equal(got, want) {
		t.Errorf("markers = %v, want %v", got, want)
	}
	if len(query) != 1 || query["limit"] != "2" {
		t.Errorf("query was modified: %v", query)
	}
}

func TestPaginate_Restartable(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())
	seedObjects(t, c, "c", "a", "b", "c")

	seq := c.PaginateObjects(context.Background(), "c", map[string]string{"limit": "2"})
	count := func() int {
		n := 0
		for page, err := range seq {
			if err != nil {
				t.Fatalf("page: %v", err)
			}
			n += len(page.Entries)
		}
		return n
	}
	if first, second := count(), count(); first != 3 || second != 3 {
		t.Errorf("entries = %d then %d, want 3 both times", first, second)
	}
}

func TestPaginate_EarlyBreak(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())
	seedObjects(t, c, "c", "a", "b", "c")
	srv.ResetRequests()

	for _, err := range c.PaginateObjects(context.Background(), "c", map[string]string{"limit": "1"}) {
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		break
	}
	if n := len(srv.Requests()); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestPaginate_Error(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())

	var errs []error
	for page, err := range c.PaginateObjects(context.Background(), "missing", nil) {
		if page != nil {
			t.Error("unexpected page")
		}
		errs = append(errs, err)
	}
	if len(errs) != 1 || !errors.IsResponse(errs[0], http.StatusNotFound) {
		t.Errorf("errors = %v, want one 404", errs)
	}
}

func TestEachObjectPage_StopsOnCallbackError(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())
	seedObjects(t, c, "c", "a", "b", "c")
	srv.ResetRequests()

	stop := stderrors.New("stop")
	calls := 0
	err := c.EachObjectPage(context.Background(), "c", map[string]string{"limit": "1"}, func(p *Page) error {
		calls++
		objects, err := p.Objects()
		if err != nil {
			return err
		}
		if objects[0].Name != "a" || objects[0].Bytes != 1 {
			t.Errorf("object = %+v", objects[0])
		}
		return stop
	})
	if !stderrors.Is(err, stop) {
		t.Errorf("err = %v, want stop", err)
	}
	if calls != 1 || len(srv.Requests()) != 1 {
		t.Errorf("calls = %d requests = %d, want 1 and 1", calls, len(srv.Requests()))
	}
}

func TestPaginateContainers(t *testing.T) {
	srv := newServer(t, swifttest.Config{})
	c := newClient(t, srv.OptionsV1())
	ctx := context.Background()
	for _, name := range []string{"logs", "backups", "media"} {
		if _, err := c.PutContainer(ctx, name, nil); err != nil {
			t.Fatalf("PutContainer: %v", err)
		}
	}

	var names []string
	err := c.EachContainerPage(ctx, map[string]string{"limit": "1"}, func(p *Page) error {
		containers, err := p.Containers()
		if err != nil {
			return err
		}
		for _, ct := range containers {
			names = append(names, ct.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("EachContainerPage: %v", err)
	}
	if want := []string{"backups", "logs", "media"}; !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}

	n := 0
	for page, err := range c.PaginateContainers(ctx, map[string]string{"prefix": "m"}) {
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		n += len(page.Entries)
	}
	if n != 1 {
		t.Errorf("prefixed entries = %d, want 1", n)
	}
}

func TestEntryName_Subdir(t *testing.T) {
	if got := (Entry{"subdir": "photos/"}).Name(); got != "photos/" {
		t.Errorf("Name = %q", got)
	}
	if got := (Entry{"name": "a", "subdir": "b/"}).Name(); got != "a" {
		t.Errorf("Name = %q", got)
	}
}
