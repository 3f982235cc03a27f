package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
)

func (r *Repository) InsertAssignmentResult(result *domain.AssignmentResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将之前的分配结果删除
	query := `DELETE FROM assignment_results WHERE assignment_plan_id = $1`
	if _, err := tx.ExecContext(ctx, query, result.AssignmentPlanID); err != nil {
		return err
	}

	query = `
		INSERT INTO assignment_results (assignment_plan_id, fitness)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	if err := tx.QueryRowContext(ctx, query, result.AssignmentPlanID, result.Fitness).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	for _, team := range result.Teams {
		query := `
			INSERT INTO assignment_result_teams (assignment_result_id, project_id, seq)
			VALUES ($1, $2, $3)
			RETURNING id
		`

		var teamID int64
		if err := tx.QueryRowContext(ctx, query, result.ID, team.ProjectID, team.Seq).Scan(&teamID); err != nil {
			return err
		}

		for _, memberID := range team.MemberIDs {
			query := `
				INSERT INTO assignment_result_team_members (assignment_result_team_id, user_id)
				VALUES ($1, $2)
			`

			if _, err := tx.ExecContext(ctx, query, teamID, memberID); err != nil {
				return err
			}
		}
	}

	for _, userID := range result.UnassignedIDs {
		query := `
			INSERT INTO assignment_result_unassigned_users (assignment_result_id, user_id)
			VALUES ($1, $2)
		`

		if _, err := tx.ExecContext(ctx, query, result.ID, userID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAssignmentResultByAssignmentPlanID(assignmentPlanID int64) (*domain.AssignmentResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			ar.id,
			ar.fitness,
			art.id,
			art.project_id,
			art.seq,
			artm.user_id,
			ar.created_at,
			ar.version
		FROM assignment_results ar
		LEFT JOIN assignment_result_teams art ON ar.id = art.assignment_result_id
		LEFT JOIN assignment_result_team_members artm ON art.id = artm.assignment_result_team_id
		WHERE ar.assignment_plan_id = $1
		ORDER BY art.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, assignmentPlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.AssignmentResult{
		AssignmentPlanID: assignmentPlanID,
		UnassignedIDs:    make([]int64, 0),
	}

	teamsMap := make(map[int64]*domain.AssignmentResultTeam)
	teamIDs := make([]int64, 0)

	for rows.Next() {
		var row struct {
			resultID  int64
			fitness   float64
			teamID    sql.NullInt64
			projectID sql.NullInt64
			seq       sql.NullInt32
			userID    sql.NullInt64
			createdAt time.Time
			version   int32
		}

		dst := []any{
			&row.resultID,
			&row.fitness,
			&row.teamID,
			&row.projectID,
			&row.seq,
			&row.userID,
			&row.createdAt,
			&row.version,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		result.ID = row.resultID
		result.Fitness = row.fitness
		result.CreatedAt = row.createdAt
		result.Version = row.version

		if !row.teamID.Valid {
			// 说明这个分配结果不存在任何队伍，这在业务上是不可能的，但是为了代码的健壮性，这里还是需要处理
			continue
		}

		team, exists := teamsMap[row.teamID.Int64]
		if !exists {
			team = &domain.AssignmentResultTeam{
				ProjectID: row.projectID.Int64,
				Seq:       row.seq.Int32,
				MemberIDs: make([]int64, 0),
			}
			teamsMap[row.teamID.Int64] = team
			teamIDs = append(teamIDs, row.teamID.Int64)
		}

		if !row.userID.Valid {
			// 说明这支队伍没有分配到任何成员，这是有可能的
			continue
		}

		team.MemberIDs = append(team.MemberIDs, row.userID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 还需要处理没有结果的情况
	if result.ID == 0 {
		return nil, sql.ErrNoRows
	}

	// 组装结果
	result.Teams = make([]domain.AssignmentResultTeam, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		result.Teams = append(result.Teams, *teamsMap[teamID])
	}

	// 查询没有被分配的成员
	query = `
		SELECT user_id
		FROM assignment_result_unassigned_users
		WHERE assignment_result_id = $1
		ORDER BY user_id
	`

	unassignedRows, err := r.dbpool.QueryContext(ctx, query, result.ID)
	if err != nil {
		return nil, err
	}
	defer unassignedRows.Close()

	for unassignedRows.Next() {
		var userID int64
		if err := unassignedRows.Scan(&userID); err != nil {
			return nil, err
		}
		result.UnassignedIDs = append(result.UnassignedIDs, userID)
	}

	if err := unassignedRows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
