package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM role_permissions rp
    JOIN permissions p ON rp.permission_id = p.id
    WHERE rp.role_id = $1 AND p.key = $2
  `, roleID, permission).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) GetProject(ctx context.Context, projectID string) (*Project, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, name,
           COALESCE(description, ''),
           COALESCE(client_name, ''),
           status, budget_allocated, currency,
           COALESCE(supervisor_id::text, ''),
           start_date, end_date, created_at, updated_at
    FROM projects
    WHERE id = $1
  `, projectID)

	var project Project
	err := row.Scan(&project.ID, &project.Name, &project.Description, &project.ClientName,
		&project.Status, &project.BudgetAllocated, &project.Currency, &project.SupervisorID,
		&project.StartDate, &project.EndDate, &project.CreatedAt, &project.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Store) ListProjects(ctx context.Context, status string, limit, offset int) ([]Project, error) {
	query := `
    SELECT id, name,
           COALESCE(description, ''),
           COALESCE(client_name, ''),
           status, budget_allocated, currency,
           COALESCE(supervisor_id::text, ''),
           start_date, end_date, created_at, updated_at
    FROM projects
  `
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"
	args = append(args, limit, offset)
	if status != "" {
		query += " LIMIT $2 OFFSET $3"
	} else {
		query += " LIMIT $1 OFFSET $2"
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var project Project
		if err := rows.Scan(&project.ID, &project.Name, &project.Description, &project.ClientName,
			&project.Status, &project.BudgetAllocated, &project.Currency, &project.SupervisorID,
			&project.StartDate, &project.EndDate, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

func (s *Store) CreateProject(ctx context.Context, project Project) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO projects (name, description, client_name, status, budget_allocated, currency, supervisor_id, start_date, end_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, project.Name, project.Description, project.ClientName, project.Status,
		project.BudgetAllocated, project.Currency, nullIfEmpty(project.SupervisorID),
		project.StartDate, project.EndDate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateProject(ctx context.Context, project Project) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE projects
    SET name = $1, description = $2, client_name = $3, status = $4,
        budget_allocated = $5, currency = $6, supervisor_id = $7,
        start_date = $8, end_date = $9, updated_at = now()
    WHERE id = $10
  `, project.Name, project.Description, project.ClientName, project.Status,
		project.BudgetAllocated, project.Currency, nullIfEmpty(project.SupervisorID),
		project.StartDate, project.EndDate, project.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *Store) ListMilestones(ctx context.Context, projectID string) ([]Milestone, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, project_id, name, status, due_date, created_at
    FROM milestones
    WHERE project_id = $1
    ORDER BY due_date NULLS LAST, created_at
  `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []Milestone
	for rows.Next() {
		var milestone Milestone
		if err := rows.Scan(&milestone.ID, &milestone.ProjectID, &milestone.Name, &milestone.Status, &milestone.DueDate, &milestone.CreatedAt); err != nil {
			return nil, err
		}
		milestones = append(milestones, milestone)
	}
	return milestones, nil
}

func (s *Store) CreateMilestone(ctx context.Context, milestone Milestone) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO milestones (project_id, name, status, due_date)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, milestone.ProjectID, milestone.Name, milestone.Status, milestone.DueDate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateMilestoneStatus(ctx context.Context, milestoneID, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE milestones SET status = $1 WHERE id = $2", status, milestoneID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMilestoneNotFound
	}
	return nil
}

func (s *Store) GetMember(ctx context.Context, memberID string) (*Member, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id,
           COALESCE(user_id::text, ''),
           first_name, last_name, email,
           COALESCE(phone, ''),
           COALESCE(trade, ''),
           status, created_at, updated_at
    FROM members
    WHERE id = $1
  `, memberID)

	var member Member
	err := row.Scan(&member.ID, &member.UserID, &member.FirstName, &member.LastName,
		&member.Email, &member.Phone, &member.Trade, &member.Status, &member.CreatedAt, &member.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *Store) ListMembers(ctx context.Context, status string, limit, offset int) ([]Member, error) {
	query := `
    SELECT id,
           COALESCE(user_id::text, ''),
           first_name, last_name, email,
           COALESCE(phone, ''),
           COALESCE(trade, ''),
           status, created_at, updated_at
    FROM members
  `
	args := []any{}
	if status != "" {
		query += " WHERE status = $1 ORDER BY last_name, first_name LIMIT $2 OFFSET $3"
		args = append(args, status, limit, offset)
	} else {
		query += " ORDER BY last_name, first_name LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var member Member
		if err := rows.Scan(&member.ID, &member.UserID, &member.FirstName, &member.LastName,
			&member.Email, &member.Phone, &member.Trade, &member.Status, &member.CreatedAt, &member.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

func (s *Store) CreateMember(ctx context.Context, member Member) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO members (user_id, first_name, last_name, email, phone, trade, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, nullIfEmpty(member.UserID), member.FirstName, member.LastName, member.Email,
		member.Phone, member.Trade, member.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateMember(ctx context.Context, member Member) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE members
    SET first_name = $1, last_name = $2, email = $3, phone = $4, trade = $5, status = $6, updated_at = now()
    WHERE id = $7
  `, member.FirstName, member.LastName, member.Email, member.Phone, member.Trade, member.Status, member.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
