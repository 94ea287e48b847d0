package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quidome/media-timefix/pkg/namestamp"
	"github.com/quidome/media-timefix/pkg/reconcile"
	"github.com/quidome/media-timefix/pkg/source"
	"github.com/quidome/media-timefix/pkg/timerange"
)

var (
	pdt = time.FixedZone("PDT", -7*60*60)

	// 2023-07-31 00:00-02:00 UTC.
	batch = timerange.MustNew(
		time.Date(2023, 7, 30, 17, 0, 0, 0, pdt),
		time.Date(2023, 7, 30, 19, 0, 0, 0, pdt),
	)

	quiet = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func utc(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2023, month, day, hour, minute, 0, 0, time.UTC)
}

func album() source.Slice {
	return source.Slice{
		{ID: "1", Filename: "holiday.jpg", CreatedAt: utc(7, 31, 0, 15)},
		{ID: "2", Filename: "PXL_20230731_003000123.jpg", CreatedAt: utc(7, 15, 12, 0)},
		{ID: "3", Filename: "PXL_20230715_170131447.jpg", CreatedAt: utc(7, 15, 17, 1)},
		{ID: "4", Filename: "Screenshot_20230730-173000.png", CreatedAt: utc(7, 31, 0, 30)},
		{ID: "5", Filename: "Screenshot_20230730-180000.png", CreatedAt: utc(7, 1, 0, 0)},
	}
}

func TestRun_ClassifiesInSourceOrder(t *testing.T) {
	for _, workers := range []int{0, 1, 4, 16} {
		report, err := Run(context.Background(), album(), batch, Options{PageSize: 2, Workers: workers, Logger: quiet})
		require.NoError(t, err)
		require.Len(t, report.Items, 5)

		wantKinds := []reconcile.Kind{
			reconcile.KindOK,
			reconcile.KindSuggest,
			reconcile.KindUnknown,
			reconcile.KindOK,
			reconcile.KindSuggest,
		}
		for i, item := range report.Items {
			assert.Equal(t, i, item.Index)
			assert.Equal(t, album()[i].ID, item.Record.ID)
			assert.Equal(t, wantKinds[i], item.Outcome.Kind, "record %s", item.Record.Filename)
		}

		assert.True(t, report.Items[1].Outcome.Suggested.Equal(utc(7, 31, 0, 30)))
		assert.True(t, report.Items[4].Outcome.Suggested.Equal(utc(7, 31, 1, 0)))
		assert.Equal(t, 2, report.Counts[reconcile.KindOK])
		assert.Equal(t, 2, report.Counts[reconcile.KindSuggest])
		assert.Equal(t, 1, report.Counts[reconcile.KindUnknown])
		assert.Zero(t, report.Applied)
		assert.Equal(t, batch, report.Range)
	}
}

func TestRun_MalformedDoesNotStopBatch(t *testing.T) {
	x, err := namestamp.NewExtractor(`([0-9a-z]{4})([0-9]{2})([0-9]{2})[-_]([0-9]{2})([0-9]{2})([0-9]{2})`)
	require.NoError(t, err)

	src := source.Slice{
		{ID: "1", Filename: "shot_20x30715-095113.jpg", CreatedAt: utc(7, 31, 0, 15)},
		{ID: "2", Filename: "PXL_20230731_003000123.jpg", CreatedAt: utc(7, 15, 12, 0)},
	}

	report, err := Run(context.Background(), src, batch, Options{
		Reconciler: reconcile.New(reconcile.Options{Extractor: x}),
		Logger:     quiet,
	})
	require.NoError(t, err)
	require.Len(t, report.Items, 2)
	assert.Equal(t, reconcile.KindMalformed, report.Items[0].Outcome.Kind)
	assert.Error(t, report.Items[0].Outcome.Err)
	assert.Equal(t, reconcile.KindSuggest, report.Items[1].Outcome.Kind)
}

func TestRun_ApplySuggestions(t *testing.T) {
	applier := &fakeApplier{fail: map[string]error{"5": errors.New("read only")}}

	report, err := Run(context.Background(), album(), batch, Options{
		Workers: 3,
		Apply:   true,
		Applier: applier,
		Logger:  quiet,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"2", "5"}, applier.ids())
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.ApplyErrors)
	assert.True(t, report.Items[1].Applied)
	assert.EqualError(t, report.Items[4].ApplyErr, "read only")
}

func TestRun_WithoutApplyNothingIsApplied(t *testing.T) {
	applier := &fakeApplier{}

	_, err := Run(context.Background(), album(), batch, Options{Applier: applier, Logger: quiet})
	require.NoError(t, err)
	assert.Empty(t, applier.ids())
}

func TestRun_SourceErrorReturnsPartialReport(t *testing.T) {
	boom := errors.New("service unavailable")
	src := &failingSource{records: album(), failAfter: 1, err: boom}

	report, err := Run(context.Background(), src, batch, Options{PageSize: 2, Logger: quiet})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, report)
	assert.Len(t, report.Items, 2)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, album(), batch, Options{Logger: quiet})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Items)
}

type fakeApplier struct {
	mu      sync.Mutex
	applied []string
	fail    map[string]error
}

func (f *fakeApplier) Apply(ctx context.Context, rec source.Record, createdAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, rec.ID)
	return f.fail[rec.ID]
}

func (f *fakeApplier) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.applied...)
}

type failingSource struct {
	records   source.Slice
	failAfter int
	err       error
	calls     int
}

func (f *failingSource) List(ctx context.Context, pageToken string, pageSize int) (source.Page, error) {
	if f.calls >= f.failAfter {
		return source.Page{}, f.err
	}
	f.calls++
	return f.records.List(ctx, pageToken, pageSize)
}
