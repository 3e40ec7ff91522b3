package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

type assignmentApi struct {
	svc *assignment.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *assignment.Service) {
	api := assignmentApi{svc: svc}

	ag := g.Group("/assignments", jwt)

	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id/order", api.updateOrder, teacherMiddleware())
	ag.GET("/:id/report", api.report, teacherMiddleware())

	ag.GET("/:id/current-question", api.currentQuestion)
	ag.POST("/:id/answers", api.submitAnswer)
	ag.GET("/:id/results", api.results)
}

// Handlers

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	inst, qs, err := api.svc.OrderedQuestions(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, AssignmentResponse{Instance: inst, Questions: qs})
}

func (api *assignmentApi) updateOrder(ctx echo.Context) error {
	var data OrderUpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OrderUpdateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	inst, err := api.svc.ModifyOrder(ctx.Param("id"), data.Order)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *assignmentApi) currentQuestion(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	cur, state, err := api.svc.CurrentQuestion(claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CurrentQuestionResponse{
		Question: cur,
		State:    state.String(),
		Done:     state == assignment.Done,
	})
}

func (api *assignmentApi) submitAnswer(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data AnswerRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnswerRequest")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	ans, err := api.svc.SubmitAnswer(claims.Subject, ctx.Param("id"), data.QuestionID, data.Choice)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ans)
}

func (api *assignmentApi) results(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.svc.Results(claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *assignmentApi) report(ctx echo.Context) error {
	stats, err := api.svc.CohortReport(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

type (
	AssignmentResponse struct {
		Instance  assignment.Instance   `json:"assignment"`
		Questions []assignment.Question `json:"questions"`
	}

	OrderUpdateRequest struct {
		Order string `json:"order" validate:"required"`
	}

	CurrentQuestionResponse struct {
		Question *assignment.Question `json:"question"`
		State    string               `json:"state"`
		Done     bool                 `json:"done"`
	}

	AnswerRequest struct {
		QuestionID string `json:"question_id" validate:"required"`
		Choice     int    `json:"choice"`
	}
)

func (or *OrderUpdateRequest) Validate() error {
	or.Order = core.CleanString(or.Order)
	return core.Validate.Struct(or)
}

func (ar *AnswerRequest) Validate() error {
	ar.QuestionID = core.CleanString(ar.QuestionID)
	return core.Validate.Struct(ar)
}
