package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleStudent,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

// 贝尔宾团队角色测试中的九种角色
var belbinRoles = []string{
	"Plant",
	"Resource Investigator",
	"Co-ordinator",
	"Shaper",
	"Monitor Evaluator",
	"Teamworker",
	"Implementer",
	"Completer Finisher",
	"Specialist",
}

func GenerateRandomBelbinRole() string {
	return belbinRoles[rand.Intn(len(belbinRoles))]
}

var nationalities = []string{
	"中国", "德国", "意大利", "西班牙", "波兰", "法国", "荷兰", "印度",
}

func GenerateRandomNationality() string {
	return nationalities[rand.Intn(len(nationalities))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
		BelbinRole:   GenerateRandomBelbinRole(),
		Nationality:  GenerateRandomNationality(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomAssignmentTemplate() *domain.AssignmentTemplate {
	at := domain.AssignmentTemplate{
		Name:                 "组队模板" + GenerateRandomID(3, 3),
		Description:          "组队模板描述" + GenerateRandomID(20, 10),
		TeamsPerProject:      int32(rand.Intn(3) + 1),
		TeamCapacity:         int32(rand.Intn(4) + 4),
		MaxSameNationality:   2,
		UnlimitedNationality: "中国",
	}

	projectsNum := rand.Intn(5) + 2
	projects := make([]domain.AssignmentTemplateProject, projectsNum)

	for i := range projects {
		projects[i] = domain.AssignmentTemplateProject{
			Name:        fmt.Sprintf("项目%d-%s", i+1, GenerateRandomID(2, 2)),
			Description: "项目描述" + GenerateRandomID(10, 5),
		}
	}

	at.Projects = projects

	return &at
}

// 生成还没有开放提交的组队计划
func GenerateRandomNotStartedAssignmentPlan(plan *domain.AssignmentPlan) {
	plan.SubmissionStartTime = time.Now().Add(time.Hour * 24)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 生成已经开放提交的组队计划
func GenerateRandomSubmissionAvailableAssignmentPlan(plan *domain.AssignmentPlan) {
	plan.SubmissionStartTime = time.Now().Add(-time.Hour * 24)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 生成正在分配队伍的组队计划
func GenerateRandomAssigningAssignmentPlan(plan *domain.AssignmentPlan) {
	plan.SubmissionStartTime = time.Now().Add(-time.Hour * 24 * 8)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 生成正在启用的组队计划
func GenerateRandomActiveAssignmentPlan(plan *domain.AssignmentPlan) {
	plan.SubmissionStartTime = time.Now().Add(-time.Hour * 24 * 30)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 生成已经结束的组队计划
func GenerateRandomEndedAssignmentPlan(plan *domain.AssignmentPlan) {
	plan.SubmissionStartTime = time.Now().Add(-time.Hour * 24 * 30 * 7)
	plan.SubmissionEndTime = plan.SubmissionStartTime.Add(time.Hour * 24 * 7)
	plan.ActiveStartTime = plan.SubmissionEndTime.Add(time.Hour * 24 * 3)
	plan.ActiveEndTime = plan.ActiveStartTime.Add(time.Hour * 24 * 30 * 5)
}

// 随机生成一个组队计划
func GenerateRandomAssignmentPlan(templateID int64) *domain.AssignmentPlan {
	plan := domain.AssignmentPlan{
		Name:                 "组队计划" + GenerateRandomID(3, 3),
		Description:          "组队计划描述" + GenerateRandomID(20, 10),
		AssignmentTemplateID: templateID,
	}

	// 随机生成一个状态，根据不同状态生成不同类型的组队计划
	randomStatus := rand.Intn(5)
	switch randomStatus {
	case 0:
		GenerateRandomNotStartedAssignmentPlan(&plan)
	case 1:
		GenerateRandomSubmissionAvailableAssignmentPlan(&plan)
	case 2:
		GenerateRandomAssigningAssignmentPlan(&plan)
	case 3:
		GenerateRandomActiveAssignmentPlan(&plan)
	case 4:
		GenerateRandomEndedAssignmentPlan(&plan)
	}

	return &plan
}

// 使用 Fisher-Yates 洗牌算法来生成项目 ID 的一个随机排列
func GenerateRandomPermutation(ids []int64) []int64 {
	idsCopy := append([]int64{}, ids...) // 复制数组，避免修改原数组

	for i := len(idsCopy) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		idsCopy[i], idsCopy[j] = idsCopy[j], idsCopy[i]
	}

	return idsCopy
}

func GenerateRandomSubmission(at *domain.AssignmentTemplate, planID int64, user *domain.User) *domain.PreferenceSubmission {
	projectIDs := make([]int64, 0, len(at.Projects))
	for _, project := range at.Projects {
		projectIDs = append(projectIDs, project.ID)
	}

	return &domain.PreferenceSubmission{
		AssignmentPlanID: planID,
		UserID:           user.ID,
		ProjectIDs:       GenerateRandomPermutation(projectIDs),
	}
}
