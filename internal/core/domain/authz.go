package domain

// Capabilities is the explicit authorization set derived once per
// request from the actor's role, sector and master-admin flag. Feature
// modules consume this instead of comparing sector strings themselves.
type Capabilities struct {
	CanViewAllSectors bool    `json:"canViewAllSectors"`
	CanCreateAdmin    bool    `json:"canCreateAdmin"`
	CanAssignSector   bool    `json:"canAssignSector"`
	VisibleSetores    []Setor `json:"visibleSetores"` // empty means unrestricted
}

// CanAccessSetor reports whether the actor may act on records of the
// given sector.
func (c Capabilities) CanAccessSetor(s Setor) bool {
	if c.CanViewAllSectors {
		return true
	}
	for _, v := range c.VisibleSetores {
		if v == s {
			return true
		}
	}
	return false
}
