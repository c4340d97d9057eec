package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scolara/internal/records"
	id "scolara/pkg/domain"
)

// PostgresStore persists domain records across the teachers, students and
// operators tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertTeacher(ctx context.Context, t records.Teacher) error {
	var userID any
	if t.UserID != nil {
		userID = uuid.UUID(*t.UserID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teachers (id, user_id, employee_code, display_name, email, phone, salary, contract_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(t.ID), userID, t.EmployeeCode, t.DisplayName, t.Email, t.Phone, t.Salary, string(t.ContractType), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert teacher: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertStudent(ctx context.Context, st records.Student) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (id, registration_number, display_name, father_name, mother_name,
			father_national_id, mother_national_id, class_name, section, academic_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(st.ID), st.RegistrationNumber, st.DisplayName, st.FatherName, st.MotherName,
		st.FatherNationalID, st.MotherNationalID, st.ClassName, st.Section, uuid.UUID(st.AcademicSessionID), st.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertOperator(ctx context.Context, op records.Operator) error {
	var userID any
	if op.UserID != nil {
		userID = uuid.UUID(*op.UserID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operators (id, user_id, staff_code, display_name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(op.ID), userID, op.StaffCode, op.DisplayName, op.Email, op.Phone, op.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert operator: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountSince(ctx context.Context, kind records.Kind, since time.Time) (int, error) {
	var table string
	switch kind {
	case records.KindTeacher:
		table = "teachers"
	case records.KindStudent:
		table = "students"
	case records.KindOperator:
		table = "operators"
	default:
		return 0, fmt.Errorf("unknown record kind %q", kind)
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE created_at >= $1`, table), since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

func (s *PostgresStore) ListStudentsByNationalID(ctx context.Context, nid string) ([]records.Student, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, registration_number, display_name, father_name, mother_name,
			father_national_id, mother_national_id, class_name, section, academic_session_id, created_at
		FROM students
		WHERE father_national_id = $1 OR mother_national_id = $1
		ORDER BY created_at`,
		nid,
	)
	if err != nil {
		return nil, fmt.Errorf("list students by national id: %w", err)
	}
	defer rows.Close()

	var out []records.Student
	for rows.Next() {
		var (
			st         records.Student
			rawID      uuid.UUID
			rawSession uuid.UUID
		)
		if err := rows.Scan(&rawID, &st.RegistrationNumber, &st.DisplayName, &st.FatherName, &st.MotherName,
			&st.FatherNationalID, &st.MotherNationalID, &st.ClassName, &st.Section, &rawSession, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		st.ID = id.StudentID(rawID)
		st.AcademicSessionID = id.AcademicSessionID(rawSession)
		out = append(out, st)
	}
	return out, rows.Err()
}
