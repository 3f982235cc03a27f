package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/utils"
)

func (h *Handler) GetAllAssignmentTemplates(w http.ResponseWriter, r *http.Request) {
	ats, err := h.repository.GetAllAssignmentTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有组队模板成功", ats)
}

func (h *Handler) CreateAssignmentTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                 string `json:"name" validate:"required"`
		Description          string `json:"description"`
		TeamsPerProject      int32  `json:"teamsPerProject" validate:"required,gte=1"`
		TeamCapacity         int32  `json:"teamCapacity" validate:"required,gte=1"`
		MaxSameNationality   int32  `json:"maxSameNationality" validate:"required,gte=1"`
		UnlimitedNationality string `json:"unlimitedNationality"`
		Projects             []struct {
			Name        string `json:"name" validate:"required"`
			Description string `json:"description"`
		} `json:"projects" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	at := &domain.AssignmentTemplate{
		Name:                 req.Name,
		Description:          req.Description,
		TeamsPerProject:      req.TeamsPerProject,
		TeamCapacity:         req.TeamCapacity,
		MaxSameNationality:   req.MaxSameNationality,
		UnlimitedNationality: req.UnlimitedNationality,
		Projects:             make([]domain.AssignmentTemplateProject, 0, len(req.Projects)),
	}

	for _, project := range req.Projects {
		at.Projects = append(at.Projects, domain.AssignmentTemplateProject{
			Name:        project.Name,
			Description: project.Description,
		})
	}

	if err := utils.ValidateAssignmentTemplateProjects(at); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateAssignmentTemplate(at); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "assignment_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建模板成功", at)
}

func (h *Handler) GetAssignmentTemplate(w http.ResponseWriter, r *http.Request) {
	at := r.Context().Value(AssignmentTemplateCtx).(*domain.AssignmentTemplate)

	h.successResponse(w, r, "获取模板成功", at)
}

func (h *Handler) UpdateAssignmentTemplate(w http.ResponseWriter, r *http.Request) {
	at := r.Context().Value(AssignmentTemplateCtx).(*domain.AssignmentTemplate)

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		at.Name = *req.Name
	}
	if req.Description != nil {
		at.Description = *req.Description
	}

	if err := h.repository.UpdateAssignmentTemplate(at); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "assignment_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新模板成功", at)
}

func (h *Handler) DeleteAssignmentTemplate(w http.ResponseWriter, r *http.Request) {
	at := r.Context().Value(AssignmentTemplateCtx).(*domain.AssignmentTemplate)

	if err := h.repository.DeleteAssignmentTemplate(at.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "assignment_plans_assignment_template_id_fkey":
				h.errorResponse(w, r, "该模板已被应用于组队计划，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除模板成功", nil)
}
