package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
)

func TestGenerateRandomPermutation(t *testing.T) {
	ids := []int64{101, 102, 103, 104, 105}

	permutation := GenerateRandomPermutation(ids)

	// 结果必须是原切片的一个排列，且不能修改原切片
	require.Len(t, permutation, len(ids))
	require.ElementsMatch(t, ids, permutation)
	require.Equal(t, []int64{101, 102, 103, 104, 105}, ids)
}

func TestGenerateRandomSubmission(t *testing.T) {
	template := GenerateRandomAssignmentTemplate()
	for i := range template.Projects {
		template.Projects[i].ID = int64(i + 1)
	}
	user := &domain.User{ID: 42}

	submission := GenerateRandomSubmission(template, 7, user)

	require.Equal(t, int64(7), submission.AssignmentPlanID)
	require.Equal(t, int64(42), submission.UserID)
	require.NoError(t, ValidateSubmissionWithTemplate(submission, template))
}

func TestGenerateRandomAssignmentTemplate(t *testing.T) {
	template := GenerateRandomAssignmentTemplate()

	require.NoError(t, ValidateAssignmentTemplateProjects(template))
	require.GreaterOrEqual(t, template.TeamsPerProject, int32(1))
	require.GreaterOrEqual(t, template.TeamCapacity, int32(1))
	require.GreaterOrEqual(t, template.MaxSameNationality, int32(1))
	require.NotEmpty(t, template.UnlimitedNationality)
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("password123", "test.ecnc.fun")
	require.NoError(t, err)

	require.NotEmpty(t, user.Username)
	require.NotEmpty(t, user.FullName)
	require.NotEmpty(t, user.BelbinRole)
	require.NotEmpty(t, user.Nationality)
	require.Contains(t, []domain.Role{domain.RoleStudent, domain.RoleAdmin}, user.Role)
}
