package accesspolicy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/material"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Viewer identifies who is asking for access. A zero-value Viewer is an
// anonymous request.
type Viewer struct {
	ID       uuid.UUID
	UserType types.UserType
}

// Anonymous reports whether the viewer carries no identity.
func (v Viewer) Anonymous() bool { return v.ID == uuid.Nil }

// CanView decides whether a viewer may consume a material. Checks run in
// order: admins see everything, the owning mentor sees their own course,
// free materials are open to everyone, enrolled students see paid content,
// everyone else is denied.
func CanView(db *gorm.DB, viewer Viewer, mat material.Material) (bool, error) {
	if !viewer.Anonymous() && viewer.UserType == types.UserTypeAdmin {
		return true, nil
	}

	if !viewer.Anonymous() && viewer.UserType == types.UserTypeMentor {
		crs, err := course.Get(db, mat.CourseID)
		if err != nil {
			if err == course.ErrCourseNotFound {
				return false, nil
			}
			return false, err
		}
		if crs.MentorID == viewer.ID {
			return true, nil
		}
	}

	if mat.IsFree {
		return true, nil
	}

	if viewer.Anonymous() {
		return false, nil
	}

	return enrollment.IsEnrolled(db, viewer.ID, mat.CourseID)
}
