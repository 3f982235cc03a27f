package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
)

func (r *Repository) GetAllAssignmentTemplates() ([]*domain.AssignmentTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			at.id,
			at.name,
			at.description,
			at.teams_per_project,
			at.team_capacity,
			at.max_same_nationality,
			at.unlimited_nationality,
			at.created_at,
			at.version,
			atp.id,
			atp.name,
			atp.description
		FROM assignment_templates at
		LEFT JOIN assignment_template_projects atp ON at.id = atp.template_id
		ORDER BY at.id, atp.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templatesMap := make(map[int64]*domain.AssignmentTemplate)
	templateIDs := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID                   int64
			Name                 string
			Description          string
			TeamsPerProject      int32
			TeamCapacity         int32
			MaxSameNationality   int32
			UnlimitedNationality string
			CreatedAt            time.Time
			Version              int32

			ProjectID          sql.NullInt64
			ProjectName        sql.NullString
			ProjectDescription sql.NullString
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.Description,
			&row.TeamsPerProject,
			&row.TeamCapacity,
			&row.MaxSameNationality,
			&row.UnlimitedNationality,
			&row.CreatedAt,
			&row.Version,
			&row.ProjectID,
			&row.ProjectName,
			&row.ProjectDescription,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		template, exists := templatesMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个 template，需要在 map 中初始化这个 template
			template = &domain.AssignmentTemplate{
				ID:                   row.ID,
				Name:                 row.Name,
				Description:          row.Description,
				TeamsPerProject:      row.TeamsPerProject,
				TeamCapacity:         row.TeamCapacity,
				MaxSameNationality:   row.MaxSameNationality,
				UnlimitedNationality: row.UnlimitedNationality,
				CreatedAt:            row.CreatedAt,
				Version:              row.Version,
				Projects:             make([]domain.AssignmentTemplateProject, 0),
			}
			templatesMap[row.ID] = template
			templateIDs = append(templateIDs, row.ID)
		}

		// 如果 projectID 为空，则表示这个模板不存在任何的项目，此时可以跳过 project 解析的部分
		if !row.ProjectID.Valid {
			continue
		}

		template.Projects = append(template.Projects, domain.AssignmentTemplateProject{
			ID:          row.ProjectID.Int64,
			Name:        row.ProjectName.String,
			Description: row.ProjectDescription.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 组装结果
	ats := make([]*domain.AssignmentTemplate, 0, len(templateIDs))
	for _, id := range templateIDs {
		ats = append(ats, templatesMap[id])
	}

	return ats, nil
}

func (r *Repository) CreateAssignmentTemplate(at *domain.AssignmentTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO assignment_templates (name, description, teams_per_project, team_capacity, max_same_nationality, unlimited_nationality)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`
	params := []any{at.Name, at.Description, at.TeamsPerProject, at.TeamCapacity, at.MaxSameNationality, at.UnlimitedNationality}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&at.ID, &at.CreatedAt, &at.Version); err != nil {
		return err
	}

	for i := range at.Projects {
		query = `
			INSERT INTO assignment_template_projects (template_id, name, description)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		params := []any{at.ID, at.Projects[i].Name, at.Projects[i].Description}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&at.Projects[i].ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAssignmentTemplate(id int64) (*domain.AssignmentTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			at.name,
			at.description,
			at.teams_per_project,
			at.team_capacity,
			at.max_same_nationality,
			at.unlimited_nationality,
			at.created_at,
			at.version,
			atp.id,
			atp.name,
			atp.description
		FROM assignment_templates at
		LEFT JOIN assignment_template_projects atp ON at.id = atp.template_id
		WHERE at.id = $1
		ORDER BY atp.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	at := &domain.AssignmentTemplate{
		ID:       id,
		Projects: make([]domain.AssignmentTemplateProject, 0),
	}
	found := false

	for rows.Next() {
		var row struct {
			Name                 string
			Description          string
			TeamsPerProject      int32
			TeamCapacity         int32
			MaxSameNationality   int32
			UnlimitedNationality string
			CreatedAt            time.Time
			Version              int32

			ProjectID          sql.NullInt64
			ProjectName        sql.NullString
			ProjectDescription sql.NullString
		}

		dst := []any{
			&row.Name,
			&row.Description,
			&row.TeamsPerProject,
			&row.TeamCapacity,
			&row.MaxSameNationality,
			&row.UnlimitedNationality,
			&row.CreatedAt,
			&row.Version,
			&row.ProjectID,
			&row.ProjectName,
			&row.ProjectDescription,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			// 说明此时是第一次查到这个模板，需要初始化这个模板
			at.Name = row.Name
			at.Description = row.Description
			at.TeamsPerProject = row.TeamsPerProject
			at.TeamCapacity = row.TeamCapacity
			at.MaxSameNationality = row.MaxSameNationality
			at.UnlimitedNationality = row.UnlimitedNationality
			at.CreatedAt = row.CreatedAt
			at.Version = row.Version
			found = true
		}

		if !row.ProjectID.Valid {
			// 说明该模板不存在任何项目
			continue
		}

		at.Projects = append(at.Projects, domain.AssignmentTemplateProject{
			ID:          row.ProjectID.Int64,
			Name:        row.ProjectName.String,
			Description: row.ProjectDescription.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return at, nil
}

func (r *Repository) UpdateAssignmentTemplate(at *domain.AssignmentTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE assignment_templates
		SET
			name = $1,
			description = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	params := []any{at.Name, at.Description, at.ID, at.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&at.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAssignmentTemplate(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM assignment_templates WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
