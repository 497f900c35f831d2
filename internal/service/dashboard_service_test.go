package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

func TestAnalytics(t *testing.T) {
	svc := NewDashboardService(DashboardDependencies{AnalyticsRepo: fakeAnalyticsRepo{}})
	summary, err := svc.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TypeCounts[0].Count)
	assert.Equal(t, "PEPPL", summary.MEPByLocation[0].Key)
	assert.Len(t, summary.MEPByCategory, 2)

	failing := NewDashboardService(DashboardDependencies{AnalyticsRepo: fakeAnalyticsRepo{failColumn: "category"}})
	_, err = failing.Analytics(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestExportWorkbook(t *testing.T) {
	mep := newFakeMEPRepo()
	vr := newFakeVRRepo()
	ctx := context.Background()
	require.NoError(t, mep.Create(ctx, &domain.MEPTicket{
		Ticket:   domain.Ticket{Status: domain.StatusPending, RequesterEmail: requester, AssigneeEmail: mepPrimary},
		Location: "PEPPL",
		Category: "Electrical",
		Dept:     null.StringFrom("IT"),
	}))
	require.NoError(t, vr.Create(ctx, &domain.VRTicket{
		Ticket:          domain.Ticket{Status: domain.StatusPending, RequesterEmail: requester, AssigneeEmail: transport},
		NumberOfPeople:  2,
		EmployeeOrGuest: domain.GuestTypeGuest,
		Names:           []string{"A", "B"},
		PickupAt:        fixedNow,
		DropAt:          fixedNow.Add(time.Hour),
		ContactNumber:   "123",
	}))

	svc := NewDashboardService(DashboardDependencies{MEPRepo: mep, VRRepo: vr, AnalyticsRepo: fakeAnalyticsRepo{}})
	var buf bytes.Buffer
	require.NoError(t, svc.ExportWorkbook(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"MEP", "VR"}, f.GetSheetList())

	mepRows, err := f.GetRows("MEP")
	require.NoError(t, err)
	require.Len(t, mepRows, 2)
	assert.Equal(t, "Ticket", mepRows[0][0])
	assert.Equal(t, "SR-20250304-001", mepRows[1][0])
	assert.Equal(t, "IT", mepRows[1][3])

	vrRows, err := f.GetRows("VR")
	require.NoError(t, err)
	require.Len(t, vrRows, 2)
	assert.Equal(t, "A, B", vrRows[1][6])
	assert.Equal(t, "guest", vrRows[1][5])
}
