package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
)

func (r *Repository) InsertPreferenceSubmission(submission *domain.PreferenceSubmission) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先把原先的记录删除再插入
	query := `DELETE FROM preference_submissions WHERE user_id = $1 AND assignment_plan_id = $2`
	if _, err := tx.ExecContext(ctx, query, submission.UserID, submission.AssignmentPlanID); err != nil {
		return err
	}

	query = `
		INSERT INTO preference_submissions (user_id, assignment_plan_id)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, submission.UserID, submission.AssignmentPlanID).Scan(&submission.ID, &submission.CreatedAt, &submission.Version); err != nil {
		return err
	}

	// rank 从 1 开始，数字越小表示志愿的优先级越高
	for i, projectID := range submission.ProjectIDs {
		query := `
			INSERT INTO preference_submission_items (preference_submission_id, rank, project_id)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, submission.ID, i+1, projectID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetPreferenceSubmissionByUserIDAndAssignmentPlanID(userID int64, assignmentPlanID int64) (*domain.PreferenceSubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, created_at, version
		FROM preference_submissions
		WHERE user_id = $1 AND assignment_plan_id = $2
	`

	submission := &domain.PreferenceSubmission{
		UserID:           userID,
		AssignmentPlanID: assignmentPlanID,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, userID, assignmentPlanID).Scan(&submission.ID, &submission.CreatedAt, &submission.Version); err != nil {
		return nil, err
	}

	query = `
		SELECT project_id
		FROM preference_submission_items
		WHERE preference_submission_id = $1
		ORDER BY rank
	`

	rows, err := r.dbpool.QueryContext(ctx, query, submission.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submission.ProjectIDs = make([]int64, 0)
	for rows.Next() {
		var projectID int64
		if err := rows.Scan(&projectID); err != nil {
			return nil, err
		}
		submission.ProjectIDs = append(submission.ProjectIDs, projectID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return submission, nil
}

func (r *Repository) GetAllSubmissionsByAssignmentPlanID(assignmentPlanID int64) ([]*domain.PreferenceSubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			psm.id,
			psm.user_id,
			psmi.project_id,
			psm.created_at,
			psm.version
		FROM preference_submissions psm
		LEFT JOIN preference_submission_items psmi ON psm.id = psmi.preference_submission_id
		WHERE psm.assignment_plan_id = $1
		ORDER BY psm.id, psmi.rank
	`

	rows, err := r.dbpool.QueryContext(ctx, query, assignmentPlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissionsMap := make(map[int64]*domain.PreferenceSubmission)
	submissionIDs := make([]int64, 0)

	for rows.Next() {
		var row struct {
			submissionID int64
			userID       int64
			projectID    sql.NullInt64
			createdAt    time.Time
			version      int32
		}

		dst := []any{
			&row.submissionID,
			&row.userID,
			&row.projectID,
			&row.createdAt,
			&row.version,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		submission, exists := submissionsMap[row.submissionID]
		if !exists {
			submission = &domain.PreferenceSubmission{
				ID:               row.submissionID,
				AssignmentPlanID: assignmentPlanID,
				UserID:           row.userID,
				ProjectIDs:       make([]int64, 0),
				CreatedAt:        row.createdAt,
				Version:          row.version,
			}
			submissionsMap[row.submissionID] = submission
			submissionIDs = append(submissionIDs, row.submissionID)
		}

		if !row.projectID.Valid {
			// 表示这条提交记录没有提交任何志愿，虽然业务上不可能出现这种情况
			// 但为了提高代码的健壮性，这边还是需要处理
			continue
		}

		// 行按照 rank 升序返回，直接追加即可保持志愿的顺序
		submission.ProjectIDs = append(submission.ProjectIDs, row.projectID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	submissions := make([]*domain.PreferenceSubmission, 0, len(submissionIDs))
	for _, id := range submissionIDs {
		submissions = append(submissions, submissionsMap[id])
	}

	return submissions, nil
}
