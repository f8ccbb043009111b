package dispensation

import (
	"context"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smpn1kudus/dispensasi-api/geofence"
	"github.com/smpn1kudus/dispensasi-api/models"
	"github.com/smpn1kudus/dispensasi-api/storage"
)

// fence sekolah untuk test
var testFence = geofence.Fence{Lat: -6.8057694, Lng: 110.8430016, RadiusM: 100}

// recordingNotifier mencatat panggilan; semua metode sinkron di test.
type recordingNotifier struct {
	mu      sync.Mutex
	created []string
	decided []string
	overdue []string
}

func (n *recordingNotifier) DispensationCreated(d *models.Dispensation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, d.TrackingCode)
}

func (n *recordingNotifier) DispensationDecided(d *models.Dispensation, approver string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decided = append(n.decided, d.Status+"/"+approver)
}

func (n *recordingNotifier) ReturnOverdue(d *models.Dispensation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overdue = append(n.overdue, d.TrackingCode)
}

func (n *recordingNotifier) decidedCalls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.decided...)
}

func (n *recordingNotifier) overdueCalls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.overdue...)
}

func setup(t *testing.T) (*Service, *recordingNotifier, storage.Store) {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	notifier := &recordingNotifier{}
	svc := NewService(store, notifier, nil, testFence)
	t.Cleanup(svc.Close)
	return svc, notifier, store
}

func validInput() SubmitInput {
	now := time.Now().UTC()
	return SubmitInput{
		StudentName:   "Ani",
		StudentClass:  "8A",
		Reason:        "Sakit",
		DepartureTime: now.Format(time.RFC3339),
		ReturnTime:    now.Add(time.Hour).Format(time.RFC3339),
	}
}

func TestSubmit(t *testing.T) {
	svc, notifier, _ := setup(t)
	ctx := context.Background()

	d, err := svc.Submit(ctx, "10.0.0.1", validInput())
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, d.Status)
	assert.Regexp(t, regexp.MustCompile(`^DSP-[A-Z0-9]{6}$`), d.TrackingCode)
	assert.NotZero(t, d.ID)
	assert.Nil(t, d.ApprovedBy)
	assert.Nil(t, d.ReturnedAt)
	assert.Equal(t, []string{d.TrackingCode}, notifier.created)

	t.Run("field wajib kosong", func(t *testing.T) {
		in := validInput()
		in.Reason = ""
		_, err := svc.Submit(ctx, "10.0.0.1", in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, "Reason", verr.Field)
	})

	t.Run("destination boleh kosong", func(t *testing.T) {
		in := validInput()
		in.Destination = ""
		_, err := svc.Submit(ctx, "10.0.0.2", in)
		assert.NoError(t, err)
	})
}

func TestSubmitRateLimited(t *testing.T) {
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	limiter := NewSubmissionLimiter(30 * time.Second)
	svc := NewService(store, &recordingNotifier{}, limiter, testFence)
	t.Cleanup(svc.Close)
	ctx := context.Background()

	_, err = svc.Submit(ctx, "10.0.0.1", validInput())
	assert.NoError(t, err)

	_, err = svc.Submit(ctx, "10.0.0.1", validInput())
	assert.ErrorIs(t, err, ErrRateLimited)

	// identitas lain tetap boleh
	_, err = svc.Submit(ctx, "10.0.0.9", validInput())
	assert.NoError(t, err)
}

func TestDecide(t *testing.T) {
	svc, notifier, _ := setup(t)
	ctx := context.Background()

	d, err := svc.Submit(ctx, "10.0.0.1", validInput())
	assert.NoError(t, err)

	upd, err := svc.Decide(ctx, d.ID, models.StatusApproved, "BuGuru")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, upd.Status)
	if assert.NotNil(t, upd.ApprovedBy) {
		assert.Equal(t, "BuGuru", *upd.ApprovedBy)
	}
	assert.Equal(t, []string{"approved/BuGuru"}, notifier.decidedCalls())

	t.Run("decide kedua kali gagal dan status tidak berubah", func(t *testing.T) {
		_, err := svc.Decide(ctx, d.ID, models.StatusRejected, "PakGuru")
		assert.ErrorIs(t, err, ErrInvalidTransition)

		cur, err := svc.store.DispensationByID(ctx, d.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusApproved, cur.Status)
		// notifikasi keputusan tetap satu kali
		assert.Len(t, notifier.decidedCalls(), 1)
	})

	t.Run("id tidak dikenal", func(t *testing.T) {
		_, err := svc.Decide(ctx, 424242, models.StatusApproved, "BuGuru")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("keputusan di luar approved/rejected ditolak", func(t *testing.T) {
		d2, err := svc.Submit(ctx, "10.0.0.3", validInput())
		assert.NoError(t, err)
		_, err = svc.Decide(ctx, d2.ID, models.StatusCompleted, "BuGuru")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestComplete(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	d, err := svc.Submit(ctx, "10.0.0.1", validInput())
	assert.NoError(t, err)

	// completed tidak bisa dicapai tanpa lewat approved
	_, err = svc.Complete(ctx, d.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Decide(ctx, d.ID, models.StatusApproved, "BuGuru")
	assert.NoError(t, err)

	upd, err := svc.Complete(ctx, d.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, upd.Status)
	assert.NotNil(t, upd.ReturnedAt)
	// approvedBy warisan dari approved
	if assert.NotNil(t, upd.ApprovedBy) {
		assert.Equal(t, "BuGuru", *upd.ApprovedBy)
	}

	// complete dua kali juga ditolak
	_, err = svc.Complete(ctx, d.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// Skenario ujung-ke-ujung: submit → approve → kembali di lokasi sekolah.
func TestLifecycleEndToEnd(t *testing.T) {
	svc, _, store := setup(t)
	ctx := context.Background()

	d, err := svc.Submit(ctx, "10.0.0.1", validInput())
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, d.Status)

	_, err = svc.Decide(ctx, d.ID, models.StatusApproved, "BuGuru")
	assert.NoError(t, err)

	res, err := svc.AttemptReturn(ctx, d.ID, testFence.Lat, testFence.Lng)
	assert.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, 0.0, res.Distance)

	cur, err := store.DispensationByID(ctx, d.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, cur.Status)
	assert.NotNil(t, cur.ReturnedAt)
}

func TestAttemptReturnOutsideRadius(t *testing.T) {
	svc, _, store := setup(t)
	ctx := context.Background()

	d, err := svc.Submit(ctx, "10.0.0.1", validInput())
	assert.NoError(t, err)
	_, err = svc.Decide(ctx, d.ID, models.StatusApproved, "BuGuru")
	assert.NoError(t, err)

	// ±500m dari sekolah, radius 100m
	res, err := svc.AttemptReturn(ctx, d.ID, testFence.Lat+0.0045, testFence.Lng)
	assert.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.InDelta(t, 500, res.Distance, 5)
	assert.Equal(t, 100.0, res.RequiredRadius)

	// record tidak disentuh
	cur, err := store.DispensationByID(ctx, d.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, cur.Status)
	assert.Nil(t, cur.ReturnedAt)
}

// Pengawas tenggat melepas goroutine-nya sendiri sesudah notifikasi
// terlambat terkirim; siswa yang tak kunjung kembali tidak meninggalkan
// ticker yang jalan terus.
func TestDeadlineWatcherStopsAfterOverdue(t *testing.T) {
	svc, notifier, _ := setup(t)
	ctx := context.Background()

	in := validInput()
	in.ReturnTime = time.Now().UTC().Add(-time.Minute).Format(time.RFC3339)
	d, err := svc.Submit(ctx, "10.0.0.1", in)
	assert.NoError(t, err)
	_, err = svc.Decide(ctx, d.ID, models.StatusApproved, "BuGuru")
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(notifier.overdueCalls()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.watchers) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// notifikasi terlambat tetap satu kali
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, notifier.overdueCalls(), 1)
}

func TestAttemptReturnErrors(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.AttemptReturn(ctx, 424242, testFence.Lat, testFence.Lng)
	assert.ErrorIs(t, err, ErrNotFound)

	d, err := svc.Submit(ctx, "10.0.0.1", validInput())
	assert.NoError(t, err)

	_, err = svc.AttemptReturn(ctx, d.ID, 200, 0)
	assert.ErrorIs(t, err, geofence.ErrInvalidCoordinate)

	// masih pending: berada di sekolah pun tidak boleh langsung completed
	_, err = svc.AttemptReturn(ctx, d.ID, testFence.Lat, testFence.Lng)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
