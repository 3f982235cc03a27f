package handler

type ContextKey string

var (
	RoleCtxKey                       ContextKey = "role"
	SubCtxKey                        ContextKey = "sub"
	MyInfoCtx                        ContextKey = "myInfo"
	UserInfoCtx                      ContextKey = "userInfo"
	AssignmentTemplateCtx            ContextKey = "assignmentTemplate"
	AssignmentPlanCtx                ContextKey = "assignmentPlan"
	LatestSubmissionAvailablePlanCtx ContextKey = "latestSubmissionAvailablePlan"
)
