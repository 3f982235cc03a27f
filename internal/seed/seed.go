package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-assigner/backend/internal/repository"
)

func readCSV(path string) ([]string, []map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, nil, err
	}

	// 读取数据
	var records []map[string]string
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, err
		}

		record := make(map[string]string)
		for i, value := range row {
			record[headers[i]] = value
		}
		records = append(records, record)
	}

	return headers, records, nil
}

// SeedRealData 读取名册和志愿两份 CSV 并按学号合并后插入数据库
//
// roster.csv 的表头为 NetID,姓名,邮箱,角色,贝尔宾角色,国籍；
// preferences.csv 的表头为 NetID,志愿1,志愿2,...，各志愿列的取值是项目名称，
// 每行必须是同一组项目名称的一个排列
func SeedRealData(r *repository.Repository) {
	_, rosterRecords, err := readCSV("./internal/seed/data/roster.csv")
	if err != nil {
		slog.Error("读取名册文件失败", "error", err)
		return
	}

	prefHeaders, prefRecords, err := readCSV("./internal/seed/data/preferences.csv")
	if err != nil {
		slog.Error("读取志愿文件失败", "error", err)
		return
	}

	// 志愿列是除 NetID 以外的所有列
	prefColumns := []string{}
	for _, header := range prefHeaders {
		if strings.HasPrefix(header, "志愿") {
			prefColumns = append(prefColumns, header)
		}
	}
	if len(prefColumns) < 2 {
		slog.Error("志愿文件中的志愿列不足两列")
		return
	}

	// 项目的集合取第一行志愿的取值
	if len(prefRecords) == 0 {
		slog.Error("志愿文件中没有数据")
		return
	}

	at := &domain.AssignmentTemplate{
		Name:                 "2025秋季学期组队模板",
		Description:          "由名册和志愿 CSV 导入生成",
		TeamsPerProject:      1,
		TeamCapacity:         6,
		MaxSameNationality:   2,
		UnlimitedNationality: "中国",
		Projects:             make([]domain.AssignmentTemplateProject, 0, len(prefColumns)),
	}

	for _, column := range prefColumns {
		name := prefRecords[0][column]
		if name == "" {
			slog.Error("志愿文件的第一行中存在空的项目名称", "column", column)
			return
		}
		at.Projects = append(at.Projects, domain.AssignmentTemplateProject{
			Name: name,
		})
	}

	if err := r.CreateAssignmentTemplate(at); err != nil {
		slog.Error("插入组队模板失败", "error", err)
		return
	}

	// 项目名称到项目 ID 的映射
	projectIDByName := make(map[string]int64, len(at.Projects))
	for _, project := range at.Projects {
		projectIDByName[project.Name] = project.ID
	}

	// 插入组队计划
	ap := &domain.AssignmentPlan{
		Name:        "2025秋季学期组队",
		Description: "由名册和志愿 CSV 导入生成",
		// 这些时间不是准确的时间，只是为了测试
		SubmissionStartTime:  time.Now().Add(-time.Hour * 24),
		SubmissionEndTime:    time.Now().Add(time.Hour * 6),
		ActiveStartTime:      time.Now().Add(time.Hour * 24 * 10),
		ActiveEndTime:        time.Now().Add(time.Hour * 24 * 20),
		AssignmentTemplateID: at.ID,
	}

	if err := r.CreateAssignmentPlan(ap); err != nil {
		slog.Error("插入组队计划失败", "error", err)
		return
	}

	// 志愿按 NetID 索引，方便合并
	prefByNetID := make(map[string]map[string]string, len(prefRecords))
	for _, record := range prefRecords {
		prefByNetID[record["NetID"]] = record
	}

	// 插入学生及其志愿提交记录
	for _, record := range rosterRecords {
		netID := record["NetID"]
		if netID == "" {
			slog.Error("没有找到NetID", "record", record)
			continue
		}

		user, err := r.GetUserByUsername(netID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				// 表示该学生不在数据库中，需要新建并插入
				user = &domain.User{
					Username:     netID,
					PasswordHash: "$2a$10$aUTaWl3vmXuQFocBkb9Qx.YJPAzNoaAcj2VC5tI45l1Roh24meCgO", // ecnc@test8403
					FullName:     record["姓名"],
					Email:        record["邮箱"],
					Role:         domain.Role(record["角色"]),
					BelbinRole:   record["贝尔宾角色"],
					Nationality:  record["国籍"],
				}

				if err := r.CreateUser(user); err != nil {
					slog.Error("插入学生失败", "error", err)
					continue
				}
			default:
				slog.Error("获取学生失败", "error", err)
				continue
			}
		}

		prefRecord, exists := prefByNetID[netID]
		if !exists {
			// 名册中的学生不一定提交了志愿
			continue
		}

		submission := &domain.PreferenceSubmission{
			AssignmentPlanID: ap.ID,
			UserID:           user.ID,
			ProjectIDs:       make([]int64, 0, len(prefColumns)),
		}

		valid := true
		for _, column := range prefColumns {
			projectID, exists := projectIDByName[prefRecord[column]]
			if !exists {
				slog.Error("志愿中包含未知的项目名称", "netID", netID, "project", prefRecord[column])
				valid = false
				break
			}
			submission.ProjectIDs = append(submission.ProjectIDs, projectID)
		}
		if !valid {
			continue
		}

		if err := r.InsertPreferenceSubmission(submission); err != nil {
			slog.Error("插入提交记录失败", "error", err)
			continue
		}
	}

	slog.Info("插入数据完成")
}
