package validation

import (
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarnav1729/premier-support-hub/internal/api/dto"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

func details(t *testing.T, err error) map[string]any {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	return apperrors.ToDomainError(err).Details
}

func validVR() dto.CreateVRRequest {
	pickup := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	return dto.CreateVRRequest{
		NumberOfPeople:  2,
		EmployeeOrGuest: "guest",
		Names:           []string{"A", "B"},
		PickupDatetime:  pickup,
		DropDatetime:    pickup.Add(time.Hour),
		ContactNumber:   "9999",
	}
}

func TestCompanyEmail(t *testing.T) {
	v := New("example.com")
	assert.NoError(t, v.Struct(dto.RequestOTPRequest{Email: "Asha@Example.com"}))

	d := details(t, v.Struct(dto.RequestOTPRequest{Email: "asha@gmail.com"}))
	assert.Equal(t, "company_email", d["email"])

	d = details(t, v.Struct(dto.RequestOTPRequest{Email: "nope"}))
	assert.Equal(t, "email", d["email"])

	assert.NoError(t, New("").Struct(dto.RequestOTPRequest{Email: "asha@gmail.com"}))
}

func TestVehicleRequestRules(t *testing.T) {
	v := New("")
	assert.NoError(t, v.Struct(validVR()))

	req := validVR()
	req.Names = []string{"A"}
	d := details(t, v.Struct(req))
	assert.Equal(t, "names_match=number_of_people", d["names"])

	req = validVR()
	req.DropDatetime = req.PickupDatetime.Add(-time.Minute)
	d = details(t, v.Struct(req))
	assert.Equal(t, "gtefield=PickupDatetime", d["drop_datetime"])

	req = validVR()
	req.EmployeeOrGuest = "vip"
	d = details(t, v.Struct(req))
	assert.Equal(t, "oneof=employee guest", d["employee_or_guest"])
}

func TestNullFieldsAndNestedAttachments(t *testing.T) {
	v := New("")
	req := dto.CreateMEPRequest{Location: "PEPPL", Category: "Civil"}
	assert.NoError(t, v.Struct(req))

	req.AreaOfWork = null.StringFrom(string(make([]byte, 300)))
	req.Attachments = []dto.AttachmentRequest{{Name: "a.png"}}
	d := details(t, v.Struct(req))
	assert.Equal(t, "max=255", d["area_of_work"])
	assert.Equal(t, "required", d["attachments[0].url"])
}

func TestListQueryScope(t *testing.T) {
	v := New("")
	assert.NoError(t, v.Struct(dto.TicketListQuery{}))
	d := details(t, v.Struct(dto.TicketListQuery{Scope: "all"}))
	assert.Equal(t, "oneof=mine assigned", d["scope"])
}
