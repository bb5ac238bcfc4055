package service

import (
	"bytes"
	"fmt"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/repository"

	"github.com/xuri/excelize/v2"
)

const gradeSheet = "Nilai"

// ExportService renders grade books as XLSX workbooks.
type ExportService struct {
	ClassRepo      *repository.ClassRepository
	SubmissionRepo *repository.SubmissionRepository
	ProfileRepo    *repository.ProfileRepository
}

func NewExportService(classRepo *repository.ClassRepository, submissionRepo *repository.SubmissionRepository, profileRepo *repository.ProfileRepository) *ExportService {
	return &ExportService{ClassRepo: classRepo, SubmissionRepo: submissionRepo, ProfileRepo: profileRepo}
}

type gradeRow struct {
	NIS        string
	Name       string
	Submission *model.Submission
}

// GradeBook lists every active member of the assignment's class, plus any
// removed student who still has a submission.
func (s *ExportService) GradeBook(a *model.Assignment) (*bytes.Buffer, error) {
	members, err := s.ClassRepo.ListMembers(a.ClassID)
	if err != nil {
		return nil, err
	}
	submissions, err := s.SubmissionRepo.ListByAssignment(a.ID)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[uint]*model.Submission, len(submissions))
	for i := range submissions {
		byStudent[submissions[i].StudentID] = &submissions[i]
	}

	rows := make([]gradeRow, 0, len(members))
	seen := make(map[uint]bool, len(members))
	for _, m := range members {
		row := gradeRow{Submission: byStudent[m.StudentID]}
		if m.Student != nil {
			row.Name = m.Student.Name
		}
		if p, err := s.ProfileRepo.FindSiswaByUserID(m.StudentID); err == nil {
			row.NIS = p.NIS
		}
		rows = append(rows, row)
		seen[m.StudentID] = true
	}
	for i := range submissions {
		sub := &submissions[i]
		if seen[sub.StudentID] {
			continue
		}
		row := gradeRow{Submission: sub}
		if sub.Student != nil {
			row.Name = sub.Student.Name
		}
		if p, err := s.ProfileRepo.FindSiswaByUserID(sub.StudentID); err == nil {
			row.NIS = p.NIS
		}
		rows = append(rows, row)
	}

	return renderGradeBook(a, rows)
}

func renderGradeBook(a *model.Assignment, rows []gradeRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(gradeSheet); err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)

	f.SetCellValue(gradeSheet, "A1", a.Title)
	f.SetCellValue(gradeSheet, "A2", fmt.Sprintf("Batas waktu: %s", a.DueDate.Format("02-01-2006 15:04")))

	headers := []string{"No", "NIS", "Nama", "Status", "Dikumpulkan", "Nilai", "Nilai Maks", "Feedback"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(gradeSheet, cell, header)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(gradeSheet, "A4", "H4", style)
	}

	for i, r := range rows {
		row := i + 5
		f.SetCellValue(gradeSheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(gradeSheet, fmt.Sprintf("B%d", row), r.NIS)
		f.SetCellValue(gradeSheet, fmt.Sprintf("C%d", row), r.Name)
		f.SetCellValue(gradeSheet, fmt.Sprintf("G%d", row), a.Points)
		if r.Submission == nil {
			f.SetCellValue(gradeSheet, fmt.Sprintf("D%d", row), "belum mengumpulkan")
			continue
		}
		f.SetCellValue(gradeSheet, fmt.Sprintf("D%d", row), r.Submission.Status)
		f.SetCellValue(gradeSheet, fmt.Sprintf("E%d", row), r.Submission.SubmittedAt.Format("02-01-2006 15:04"))
		if r.Submission.Score != nil {
			f.SetCellValue(gradeSheet, fmt.Sprintf("F%d", row), *r.Submission.Score)
		}
		f.SetCellValue(gradeSheet, fmt.Sprintf("H%d", row), r.Submission.Feedback)
	}
	f.SetColWidth(gradeSheet, "C", "C", 30)
	f.SetColWidth(gradeSheet, "H", "H", 40)

	return f.WriteToBuffer()
}
