package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/rules"

	"go.uber.org/zap"
)

// RegisterWorker creates a worker account with a bcrypt-hashed password.
func (s *Service) RegisterWorker(ctx context.Context, in RegisterInput) (*models.Worker, error) {
	in.Username = strings.TrimSpace(in.Username)
	errs := rules.ValidateStruct(in)

	var w *models.Worker
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if in.Username != "" {
			taken, err := tx.Workers.UsernameTaken(ctx, in.Username, 0)
			if err != nil {
				return err
			}
			if taken {
				errs.Add("username", msgUsernameTaken)
			}
		}
		if err := checkPosition(ctx, tx, in.PositionID, errs); err != nil {
			return err
		}
		if err := errs.Err(); err != nil {
			return err
		}

		hash, err := auth.HashPassword(in.Password1)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		w = &models.Worker{
			Username:   in.Username,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			Password:   hash,
			PositionID: in.PositionID,
		}
		return tx.Workers.Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("worker registered", zap.Uint("worker_id", w.ID), zap.String("username", w.Username))
	return w, nil
}

// Authenticate checks a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Worker, error) {
	w, err := s.repos.Workers.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(w.Password, password); err != nil {
		return nil, err
	}
	return w, nil
}

// UpdateWorker replaces the worker's profile fields.
func (s *Service) UpdateWorker(ctx context.Context, id uint, in WorkerInput) (*models.Worker, error) {
	in.normalize()
	errs := rules.ValidateStruct(in)

	var w *models.Worker
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		exists, err := tx.Workers.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return notFound("worker", id)
		}
		if in.Username != "" {
			taken, err := tx.Workers.UsernameTaken(ctx, in.Username, id)
			if err != nil {
				return err
			}
			if taken {
				errs.Add("username", msgUsernameTaken)
			}
		}
		if err := checkPosition(ctx, tx, in.PositionID, errs); err != nil {
			return err
		}
		if err := errs.Err(); err != nil {
			return err
		}

		err = tx.Workers.Update(ctx, &models.Worker{
			ID:         id,
			Username:   in.Username,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			PositionID: in.PositionID,
		})
		if err != nil {
			return err
		}
		w, err = tx.Workers.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// SavePosition creates a position, or updates it when id is non-zero.
func (s *Service) SavePosition(ctx context.Context, id uint, in PositionInput) (*models.Position, error) {
	in.normalize()
	errs := rules.ValidateStruct(in)
	if _, bad := errs["name"]; !bad {
		errs.Merge(rules.ValidatePositionName(in.Name))
	}

	var p *models.Position
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if id != 0 {
			var err error
			if p, err = tx.Positions.Get(ctx, id); err != nil {
				return err
			}
		} else {
			p = &models.Position{}
		}
		if in.Name != "" {
			taken, err := tx.Positions.NameTaken(ctx, in.Name, id)
			if err != nil {
				return err
			}
			if taken {
				errs.Add("name", fmt.Sprintf(msgNameTakenFmt, "Position"))
			}
		}
		if err := errs.Err(); err != nil {
			return err
		}

		p.Name = in.Name
		if id != 0 {
			return tx.Positions.Update(ctx, p)
		}
		return tx.Positions.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SaveTaskType creates a task type, or updates it when id is non-zero.
func (s *Service) SaveTaskType(ctx context.Context, id uint, in TaskTypeInput) (*models.TaskType, error) {
	in.normalize()
	errs := rules.ValidateStruct(in)

	var tt *models.TaskType
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if id != 0 {
			var err error
			if tt, err = tx.TaskTypes.Get(ctx, id); err != nil {
				return err
			}
		} else {
			tt = &models.TaskType{}
		}
		if in.Name != "" {
			taken, err := tx.TaskTypes.NameTaken(ctx, in.Name, id)
			if err != nil {
				return err
			}
			if taken {
				errs.Add("name", fmt.Sprintf(msgNameTakenFmt, "Task type"))
			}
		}
		if err := errs.Err(); err != nil {
			return err
		}

		tt.Name = in.Name
		if id != 0 {
			return tx.TaskTypes.Update(ctx, tt)
		}
		return tx.TaskTypes.Create(ctx, tt)
	})
	if err != nil {
		return nil, err
	}
	return tt, nil
}

// SaveTeam creates a team, or replaces it when id is non-zero. The member
// list is replaced as a whole.
func (s *Service) SaveTeam(ctx context.Context, id uint, in TeamInput) (*models.Team, error) {
	in.normalize()
	errs := rules.ValidateStruct(in)

	var t *models.Team
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if id != 0 {
			var err error
			if t, err = tx.Teams.Get(ctx, id); err != nil {
				return err
			}
		} else {
			t = &models.Team{}
		}
		missing, err := tx.Workers.MissingIDs(ctx, in.MemberIDs)
		if err != nil {
			return err
		}
		checkIDs(errs, "members", missing)
		if err := errs.Err(); err != nil {
			return err
		}

		t.Name = in.Name
		members := idsOrEmpty(in.MemberIDs)
		if id != 0 {
			err = tx.Teams.Update(ctx, t, members)
		} else {
			err = tx.Teams.Create(ctx, t, members)
		}
		if err != nil {
			return err
		}
		t, err = tx.Teams.Get(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SaveProject creates a project, or replaces it when id is non-zero. The
// linked teams are replaced as a whole; completion state is never touched.
func (s *Service) SaveProject(ctx context.Context, id uint, in ProjectInput) (*models.Project, error) {
	in.normalize()
	errs := rules.ValidateStruct(in)
	deadline, _ := parseDeadline(in.Deadline, errs)

	var p *models.Project
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if id != 0 {
			var err error
			if p, err = tx.Projects.Find(ctx, id); err != nil {
				return err
			}
		} else {
			p = &models.Project{}
		}
		missing, err := tx.Teams.MissingIDs(ctx, in.TeamIDs)
		if err != nil {
			return err
		}
		checkIDs(errs, "teams", missing)
		if err := errs.Err(); err != nil {
			return err
		}

		p.Name = in.Name
		p.Description = in.Description
		p.Deadline = deadline
		teams := idsOrEmpty(in.TeamIDs)
		if id != 0 {
			err = tx.Projects.Update(ctx, p, teams)
		} else {
			err = tx.Projects.Create(ctx, p, teams)
		}
		if err != nil {
			return err
		}
		p, err = tx.Projects.Get(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
