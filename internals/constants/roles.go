package constants

import "fmt"

// Role yang dikenal engine. Nilai role dipercaya apa adanya dari
// layanan auth (engine tidak menyimpan permission sendiri).
const (
	RoleAdmin       = "admin"
	RoleModerator   = "moderator"
	RolePedagogical = "pedagogical"
	RoleInstructor  = "instructor"
	RoleStudent     = "student"
)

// Template pesan error role
const (
	ErrOnlyStaffCanAccess    = "❌ Hanya instructor, moderator, pedagogical, atau admin yang boleh mengakses fitur %s."
	ErrOnlyOverriderCanWrite = "❌ Hanya admin, moderator, atau pedagogical yang boleh mengubah %s yang sudah ada."
)

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorOverride(feature string) string {
	return fmt.Sprintf(ErrOnlyOverriderCanWrite, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleStudent,
		RoleInstructor,
		RolePedagogical,
		RoleModerator,
		RoleAdmin,
	}

	// Staff boleh mencatat kehadiran / nilai.
	StaffRoles = []string{
		RoleInstructor,
		RolePedagogical,
		RoleModerator,
		RoleAdmin,
	}

	// OverrideRoles boleh menimpa record kehadiran yang sudah ada.
	// Instructor hanya boleh submit pertama kali.
	OverrideRoles = []string{
		RoleAdmin,
		RoleModerator,
		RolePedagogical,
	}
)

func IsOverrideRole(role string) bool {
	for _, r := range OverrideRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsStaffRole(role string) bool {
	for _, r := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}
