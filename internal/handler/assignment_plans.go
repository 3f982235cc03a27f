package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/utils"
)

func (h *Handler) CreateAssignmentPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                string    `json:"name" validate:"required"`
		Description         string    `json:"description"`
		SubmissionStartTime time.Time `json:"submissionStartTime" validate:"required"`
		SubmissionEndTime   time.Time `json:"submissionEndTime" validate:"required"`
		ActiveStartTime     time.Time `json:"activeStartTime" validate:"required"`
		ActiveEndTime       time.Time `json:"activeEndTime" validate:"required"`
		TemplateID          int64     `json:"templateID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plan := &domain.AssignmentPlan{
		Name:                 req.Name,
		Description:          req.Description,
		SubmissionStartTime:  req.SubmissionStartTime,
		SubmissionEndTime:    req.SubmissionEndTime,
		ActiveStartTime:      req.ActiveStartTime,
		ActiveEndTime:        req.ActiveEndTime,
		AssignmentTemplateID: req.TemplateID,
	}

	// 检查 plan 的时间是否合法
	if err := utils.ValidateAssignmentPlanTime(plan); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 插入数据到数据库中
	if err := h.repository.CreateAssignmentPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "assignment_plans_name_key":
				h.errorResponse(w, r, "组队计划名称已存在")
			case "assignment_plans_assignment_template_id_fkey":
				h.errorResponse(w, r, "组队计划模板不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建组队计划成功", plan)
}

func (h *Handler) GetAssignmentPlanByID(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	h.successResponse(w, r, "获取组队计划成功", plan)
}

func (h *Handler) DeleteAssignmentPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	if err := h.repository.DeleteAssignmentPlan(plan.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除组队计划成功", nil)
}

func (h *Handler) UpdateAssignmentPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	var req struct {
		Name                *string    `json:"name"`
		Description         *string    `json:"description"`
		SubmissionStartTime *time.Time `json:"submissionStartTime"`
		SubmissionEndTime   *time.Time `json:"submissionEndTime"`
		ActiveStartTime     *time.Time `json:"activeStartTime"`
		ActiveEndTime       *time.Time `json:"activeEndTime"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 将输入的参数解析到 plan 中
	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.SubmissionStartTime != nil {
		plan.SubmissionStartTime = *req.SubmissionStartTime
	}
	if req.SubmissionEndTime != nil {
		plan.SubmissionEndTime = *req.SubmissionEndTime
	}
	if req.ActiveStartTime != nil {
		plan.ActiveStartTime = *req.ActiveStartTime
	}
	if req.ActiveEndTime != nil {
		plan.ActiveEndTime = *req.ActiveEndTime
	}

	// 检查 plan 的时间是否合法
	if err := utils.ValidateAssignmentPlanTime(plan); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 更新组队计划
	if err := h.repository.UpdateAssignmentPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "assignment_plans_name_key":
				h.errorResponse(w, r, "组队计划名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新组队计划成功", plan)
}

func (h *Handler) GetAllAssignmentPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repository.GetAllAssignmentPlans()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有组队计划成功", plans)
}

func (h *Handler) SubmitYourPreference(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	var req struct {
		ProjectIDs []int64 `json:"projectIDs" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	submission := &domain.PreferenceSubmission{
		AssignmentPlanID: plan.ID,
		UserID:           myInfo.ID,
		ProjectIDs:       req.ProjectIDs,
	}

	// 还需要检查提交的志愿是否恰好是模板中项目的一个排列
	template, err := h.repository.GetAssignmentTemplate(plan.AssignmentTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateSubmissionWithTemplate(submission, template); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.InsertPreferenceSubmission(submission); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "成功提交志愿", submission)
}

func (h *Handler) GetYourPreferenceSubmission(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	submission, err := h.repository.GetPreferenceSubmissionByUserIDAndAssignmentPlanID(myInfo.ID, plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "你还没有提交过志愿", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取志愿提交成功", submission)
}

func (h *Handler) GetAssignmentPlanSubmissions(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	submissions, err := h.repository.GetAllSubmissionsByAssignmentPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取该组队计划所有的提交记录成功", submissions)
}

func (h *Handler) SubmitAssignmentResult(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	var req struct {
		Fitness float64 `json:"fitness"`
		Teams   []struct {
			ProjectID int64   `json:"projectID" validate:"required"`
			Seq       int32   `json:"seq" validate:"required,min=1"`
			MemberIDs []int64 `json:"memberIDs" validate:"required"`
		} `json:"teams" validate:"required,dive"`
		UnassignedIDs []int64 `json:"unassignedIDs"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result := &domain.AssignmentResult{
		AssignmentPlanID: plan.ID,
		Fitness:          req.Fitness,
		Teams:            make([]domain.AssignmentResultTeam, len(req.Teams)),
		UnassignedIDs:    req.UnassignedIDs,
	}

	for i, team := range req.Teams {
		result.Teams[i] = domain.AssignmentResultTeam{
			ProjectID: team.ProjectID,
			Seq:       team.Seq,
			MemberIDs: team.MemberIDs,
		}
	}

	// 必须检查提交的结果是否和模板对的上
	template, err := h.repository.GetAssignmentTemplate(plan.AssignmentTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateAssignmentResultWithTemplate(result, template); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 还要检查结果中的成员是否都提交过志愿
	submissions, err := h.repository.GetAllSubmissionsByAssignmentPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateAssignmentResultWithSubmissions(result, submissions); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 最后要检查是否存在重复的成员
	if err := utils.ValidIfExistsDuplicateMember(result); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.InsertAssignmentResult(result); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交分配结果成功", result)
}

func (h *Handler) GetAssignmentResult(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	result, err := h.repository.GetAssignmentResultByAssignmentPlanID(plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "该组队计划还没有分配结果", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取分配结果成功", result)
}

func (h *Handler) GenerateAssignmentResult(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	// 获取参数，没有传入的参数使用配置中的默认值
	var req struct {
		Alpha            *float64 `json:"alpha" validate:"omitempty,min=0"`
		Beta             *float64 `json:"beta" validate:"omitempty,min=0"`
		Rho              *float64 `json:"rho" validate:"omitempty,gt=0,lt=1"`
		Q                *float64 `json:"q" validate:"omitempty,gt=0"`
		PreferenceWeight *float64 `json:"preferenceWeight" validate:"omitempty,min=0,max=1"`
		AntCount         *int32   `json:"antCount" validate:"omitempty,min=1"`
		IterationCount   *int32   `json:"iterationCount" validate:"omitempty,min=1"`
		Seed             *int64   `json:"seed"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 构建参数
	parameters := &optimizer.Parameters{
		Alpha:            h.config.Optimizer.Alpha,
		Beta:             h.config.Optimizer.Beta,
		Rho:              h.config.Optimizer.Rho,
		Q:                h.config.Optimizer.Q,
		PreferenceWeight: h.config.Optimizer.PreferenceWeight,
		AntCount:         h.config.Optimizer.AntCount,
		IterationCount:   h.config.Optimizer.IterationCount,
		Seed:             time.Now().UnixNano(),
	}

	if req.Alpha != nil {
		parameters.Alpha = *req.Alpha
	}
	if req.Beta != nil {
		parameters.Beta = *req.Beta
	}
	if req.Rho != nil {
		parameters.Rho = *req.Rho
	}
	if req.Q != nil {
		parameters.Q = *req.Q
	}
	if req.PreferenceWeight != nil {
		parameters.PreferenceWeight = *req.PreferenceWeight
	}
	if req.AntCount != nil {
		parameters.AntCount = *req.AntCount
	}
	if req.IterationCount != nil {
		parameters.IterationCount = *req.IterationCount
	}
	if req.Seed != nil {
		parameters.Seed = *req.Seed
	}

	// 获取组队计划所用的模板
	template, err := h.repository.GetAssignmentTemplate(plan.AssignmentTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 获取组队计划的提交记录
	submissions, err := h.repository.GetAllSubmissionsByAssignmentPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 获取组队计划所用的用户
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 自动分配
	o, err := optimizer.New(parameters, users, template, submissions)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	res, err := o.Run()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	res.AssignmentPlanID = plan.ID

	h.successResponse(w, r, "自动分配成功", res)
}

func (h *Handler) PublishAssignmentResult(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(AssignmentPlanCtx).(*domain.AssignmentPlan)

	result, err := h.repository.GetAssignmentResultByAssignmentPlanID(plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该组队计划还没有分配结果")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	template, err := h.repository.GetAssignmentTemplate(plan.AssignmentTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	projectNames := make(map[int64]string, len(template.Projects))
	for _, project := range template.Projects {
		projectNames[project.ID] = project.Name
	}

	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	usersByID := make(map[int64]*domain.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	// 给每个被分配的成员发送一封通知邮件
	for _, team := range result.Teams {
		for _, memberID := range team.MemberIDs {
			member, exists := usersByID[memberID]
			if !exists {
				continue
			}

			teammates := make([]string, 0, len(team.MemberIDs)-1)
			for _, otherID := range team.MemberIDs {
				if otherID == memberID {
					continue
				}
				if other, exists := usersByID[otherID]; exists {
					teammates = append(teammates, other.FullName)
				}
			}

			mailMessage := domain.MailMessage{
				Type: "result_published",
				To:   member.Email,
				Data: domain.ResultPublishedMailData{
					FullName:    member.FullName,
					PlanName:    plan.Name,
					ProjectName: projectNames[team.ProjectID],
					TeamSeq:     team.Seq,
					Teammates:   teammates,
				},
			}

			mailData, err := json.Marshal(mailMessage)
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)

			err = h.mailChannel.PublishWithContext(
				ctx,
				"",
				"email_queue",
				true,
				false,
				amqp.Publishing{
					ContentType: "application/json",
					Body:        mailData,
				},
			)
			cancel()
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}
		}
	}

	h.successResponse(w, r, "分配结果已通过邮件通知各成员", nil)
}
