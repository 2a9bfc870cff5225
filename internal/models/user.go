package models

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleManagement Role = "management" // full admin
	RoleManager    Role = "manager"    // sub-admin
	RoleMember     Role = "member"
	RolePending    Role = "pending" // registered, awaiting approval
)

var roles = []Role{RoleManagement, RoleManager, RoleMember, RolePending}

// ParseRole rejects anything that is not one of the known roles.
func ParseRole(s string) (Role, error) {
	for _, r := range roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

type Sector string

const (
	SectorManagement         Sector = "management"
	SectorSuspensionSteering Sector = "suspension_steering"
	SectorPowertrain         Sector = "powertrain"
	SectorMarketing          Sector = "marketing"
	SectorDesignStructures   Sector = "design_structures"
	SectorBrakesWheels       Sector = "brakes_wheels"
	SectorElectrical         Sector = "electrical"
	SectorStructuralAnalysis Sector = "structural_analysis"
	SectorNone               Sector = "none" // pending users and visitors
)

var sectorLabels = map[Sector]string{
	SectorManagement:         "Gestão",
	SectorSuspensionSteering: "Suspensão e Direção",
	SectorPowertrain:         "PowerTrain",
	SectorMarketing:          "Marketing",
	SectorDesignStructures:   "Design e Estruturas",
	SectorBrakesWheels:       "Freio e Rodas",
	SectorElectrical:         "Elétrica",
	SectorStructuralAnalysis: "Cálculo Estrutural",
	SectorNone:               "Visitante",
}

// ParseSector rejects anything that is not one of the known sectors.
func ParseSector(s string) (Sector, error) {
	sector := Sector(s)
	if _, ok := sectorLabels[sector]; !ok {
		return "", fmt.Errorf("%w: unknown sector %q", ErrValidation, s)
	}
	return sector, nil
}

// Label returns the display name of the sector.
func (s Sector) Label() string {
	if label, ok := sectorLabels[s]; ok {
		return label
	}
	return string(s)
}

// OrderSector reports whether service orders can be routed to the sector.
func (s Sector) OrderSector() bool {
	_, ok := sectorLabels[s]
	return ok && s != SectorNone && s != SectorManagement
}

type User struct {
	ID               uint         `gorm:"primarykey" json:"id"`
	Username         string       `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email            string       `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash     string       `gorm:"size:60;not null" json:"-"`
	Role             Role         `gorm:"type:varchar(20);not null;default:'pending';index" json:"role"`
	Sector           Sector       `gorm:"type:varchar(30);not null;default:'none';index" json:"sector"`
	Active           bool         `gorm:"not null;default:false" json:"is_active"`
	WorkSchedule     WeekSchedule `gorm:"type:text;not null" json:"work_schedule"`
	TotalHoursWorked int          `gorm:"not null;default:0" json:"total_hours_worked"` // minutes
	BankOfHours      int          `gorm:"not null;default:0" json:"bank_of_hours"`      // signed minutes
	TelegramChatID   *int64       `gorm:"uniqueIndex" json:"-"`
	CreatedAt        time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsManagement reports whether the user is an administrator.
func (u *User) IsManagement() bool {
	return u.Role == RoleManagement
}

// Activate marks the user approved; a pending user gets the default member role.
func (u *User) Activate() {
	u.Active = true
	if u.Role == RolePending {
		u.Role = RoleMember
	}
}

// Identity returns the acting identity of the user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Role: u.Role, Sector: u.Sector}
}

// Identity is the caller of a core operation, supplied by the session layer.
type Identity struct {
	UserID uint
	Role   Role
	Sector Sector
}

func (i Identity) IsManagement() bool {
	return i.Role == RoleManagement
}

// CanManage reports whether the identity holds an administrative role.
func (i Identity) CanManage() bool {
	return i.Role == RoleManagement || i.Role == RoleManager
}

// FormatMinutes formats minutes as "Hh Mm"; negative values get a leading "-".
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%dh %dm", sign, minutes/60, minutes%60)
}

// Scan rejects unknown roles coming back from the database.
func (r *Role) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scan rejects unknown sectors coming back from the database.
func (s *Sector) Scan(src any) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseSector(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("%w: unexpected column type %T", ErrValidation, src)
	}
}
