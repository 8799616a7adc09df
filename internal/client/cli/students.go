package cli

import (
	"context"
	"fmt"
	"os"
)

// AddStudent registers a new student for the signed-in teacher.
func (a *App) AddStudent(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Student name", os.Stdout)
	if err != nil {
		return err
	}

	group, err := getSimpleText(a.reader, "Group (optional)", os.Stdout)
	if err != nil {
		return err
	}

	s, err := a.students.Register(ctx, name, group)
	if err != nil {
		printlnFn("Cannot add student:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Added %s (%s)", s.Name, s.ID))
	return nil
}

// Students lists the teacher's registered students.
func (a *App) Students(ctx context.Context) error {
	list, err := a.students.List(ctx)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if len(list) == 0 {
		printlnFn("No students registered yet.")
		return nil
	}

	for _, s := range list {
		if s.Group != "" {
			printlnFn(fmt.Sprintf("%s  %s (%s)", s.ID, s.Name, s.Group))
		} else {
			printlnFn(fmt.Sprintf("%s  %s", s.ID, s.Name))
		}
	}
	return nil
}

func (a *App) RenameStudent(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Student id", os.Stdout)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "New name", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.students.Rename(ctx, id, name); err != nil {
		printlnFn("Cannot rename student:", err.Error())
		return err
	}

	printlnFn("Renamed.")
	return nil
}

func (a *App) DeleteStudent(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Student id to remove", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.students.Remove(ctx, id); err != nil {
		printlnFn("Cannot remove student:", err.Error())
		return err
	}

	printlnFn("Removed.")
	return nil
}
