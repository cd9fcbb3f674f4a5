package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
)

type (
	studentApi struct {
		svc        *student.Service
		attendance *attendance.Service
		reports    *report.Service
	}

	rosterRow struct {
		student.WithAttendance
		Percentage float64 `json:"attendance_percentage"`
	}

	statsResponse struct {
		attendance.Stats
		Percentage float64 `json:"percentage"`
	}

	markDayRequest struct {
		Present bool `json:"present"`
	}
)

func registerStudentAPI(g *echo.Group, svc *student.Service, att *attendance.Service, reports *report.Service) {
	api := studentApi{
		svc:        svc,
		attendance: att,
		reports:    reports,
	}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)

	// detail endpoints
	dg := sg.Group("/:id", studentMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/grade", api.grade)
	dg.GET("/attendance", api.stats)
	dg.GET("/attendance/week", api.week)
	dg.PUT("/attendance/week/:day", api.markDay)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

// query lists students by name, with their attendance counters when `with_attendance` is set.
func (api *studentApi) query(ctx echo.Context) error {
	if boolParam(ctx, "with_attendance") {
		students, err := api.svc.QueryWithAttendance(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "querying roster")
		}
		rows := make([]rosterRow, 0, len(students))
		for _, s := range students {
			rows = append(rows, rosterRow{WithAttendance: s, Percentage: s.Percentage()})
		}
		return ctx.JSON(http.StatusOK, rows)
	}

	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, student.OrderableFields...)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	s, err = api.svc.Update(ctx.Request().Context(), s.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) grade(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	row, err := api.reports.Student(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "computing grade")
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *studentApi) stats(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	stats, err := api.attendance.Stats(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "counting attendance")
	}
	return ctx.JSON(http.StatusOK, statsResponse{Stats: stats, Percentage: stats.Percentage()})
}

func (api *studentApi) week(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	ref, err := refDate(ctx)
	if err != nil {
		return err
	}

	days, err := api.attendance.Week(ctx.Request().Context(), s.ID, ref)
	if err != nil {
		return errors.Wrap(err, "loading week")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"week_start": core.FormatDate(attendance.WeekStart(ref)),
		"days":       days,
	})
}

func (api *studentApi) markDay(ctx echo.Context) error {
	s, err := contextStudent(ctx)
	if err != nil {
		return err
	}
	day, ok := attendance.ParseWeekday(ctx.Param("day"))
	if !ok {
		return core.NewFieldError("day", attendance.ErrInvalidDay)
	}
	ref, err := refDate(ctx)
	if err != nil {
		return err
	}

	var data markDayRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to markDayRequest")
	}

	rec, err := api.attendance.MarkDay(ctx.Request().Context(), s.ID, day, data.Present, ref)
	if err != nil {
		return errors.Wrap(err, "marking day")
	}
	return ctx.JSON(http.StatusOK, rec)
}
