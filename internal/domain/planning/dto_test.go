package planning

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "0190a1b2-7c3d-7e4f-8a5b-6c7d8e9f0a1b"

func strPtr(s string) *string { return &s }

func TestCreatePlanningRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreatePlanningRequest
		wantErr []string
	}{
		{
			name: "valid template",
			req:  CreatePlanningRequest{UserID: testUserID, IsTemplate: true, DayOfWeek: intPtr(2), StartTime: "08:30", EndTime: "16:30"},
		},
		{
			name: "valid dated",
			req:  CreatePlanningRequest{UserID: testUserID, Date: strPtr("2026-02-03"), StartTime: "10:00", EndTime: "18:00"},
		},
		{
			name:    "template without day",
			req:     CreatePlanningRequest{UserID: testUserID, IsTemplate: true, StartTime: "08:30", EndTime: "16:30"},
			wantErr: []string{"dayOfWeek"},
		},
		{
			name:    "dated without date",
			req:     CreatePlanningRequest{UserID: testUserID, StartTime: "08:30", EndTime: "16:30"},
			wantErr: []string{"date"},
		},
		{
			name:    "end before start",
			req:     CreatePlanningRequest{UserID: testUserID, IsTemplate: true, DayOfWeek: intPtr(0), StartTime: "17:00", EndTime: "09:00"},
			wantErr: []string{"endTime"},
		},
		{
			name:    "bad user and time",
			req:     CreatePlanningRequest{UserID: "nope", IsTemplate: true, DayOfWeek: intPtr(7), StartTime: "9am", EndTime: "17:00"},
			wantErr: []string{"userId", "dayOfWeek", "startTime"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			fields := verrs.ToMap()
			for _, f := range tt.wantErr {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestCreatePlanningRequest_Build(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	req := CreatePlanningRequest{UserID: testUserID, Date: strPtr("2026-02-03"), StartTime: "10:00", EndTime: "18:15"}
	require.NoError(t, req.Validate())
	p := req.Build(loc)

	assert.False(t, p.IsTemplate)
	assert.Equal(t, "2026-02-03", DateKey(*p.Date))
	assert.True(t, p.StartTime.Equal(time.Date(2026, 2, 3, 10, 0, 0, 0, loc)))
	assert.True(t, p.EndTime.Equal(time.Date(2026, 2, 3, 18, 15, 0, 0, loc)))

	tpl := CreatePlanningRequest{UserID: testUserID, IsTemplate: true, DayOfWeek: intPtr(4), StartTime: "07:00", EndTime: "15:00"}
	require.NoError(t, tpl.Validate())
	p = tpl.Build(loc)
	assert.Equal(t, 1970, p.StartTime.Year())
	assert.Equal(t, "07:00", p.StartTime.In(loc).Format(TimeOfDayLayout))
}

func TestUpdatePlanningRequest_Apply(t *testing.T) {
	loc := time.UTC
	tpl := Planning{ID: "p1", IsTemplate: true, DayOfWeek: intPtr(0), StartTime: TemplateTime(9, 0, loc), EndTime: TemplateTime(17, 0, loc)}

	req := UpdatePlanningRequest{StartTime: strPtr("08:00")}
	require.NoError(t, req.Validate())
	got, err := req.Apply(tpl, loc)
	require.NoError(t, err)
	assert.Equal(t, "08:00", got.StartTime.Format(TimeOfDayLayout))
	assert.Equal(t, "17:00", got.EndTime.Format(TimeOfDayLayout))

	bad := UpdatePlanningRequest{StartTime: strPtr("18:00")}
	require.NoError(t, bad.Validate())
	_, err = bad.Apply(tpl, loc)
	assert.Error(t, err)

	wrongKind := UpdatePlanningRequest{Date: strPtr("2026-01-05")}
	_, err = wrongKind.Apply(tpl, loc)
	assert.Error(t, err)
}
