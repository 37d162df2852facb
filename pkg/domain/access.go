package domain

// Access resolution for documents. Precedence, first match wins:
//  1. creator: full rights
//  2. admin: view, edit, delete (never signing or collaborator management)
//  3. collaborator: per granted permission; sign counts as edit for content
//  4. otherwise: no access

// CanView reports whether the user may read the document
func CanView(u *User, d *Document) bool {
	if u.ID == d.CreatorID {
		return true
	}
	if u.IsAdmin() {
		return true
	}
	_, ok := d.CollaboratorPermission(u.ID)
	return ok
}

// CanEdit reports whether the user may mutate the document content
func CanEdit(u *User, d *Document) bool {
	if u.ID == d.CreatorID {
		return true
	}
	if u.IsAdmin() {
		return true
	}
	perm, ok := d.CollaboratorPermission(u.ID)
	if !ok {
		return false
	}
	return perm == PermissionEdit || perm == PermissionSign
}

// CanDelete reports whether the user may remove the document entirely
func CanDelete(u *User, d *Document) bool {
	return u.ID == d.CreatorID || u.IsAdmin()
}

// CanManageSigning reports whether the user may start, advance or complete
// the signing workflow. Creator-exclusive: admins are deliberately excluded.
func CanManageSigning(u *User, d *Document) bool {
	return u.ID == d.CreatorID
}

// CanManageCollaborators reports whether the user may change the
// collaborator set. Creator-exclusive, like signing management.
func CanManageCollaborators(u *User, d *Document) bool {
	return u.ID == d.CreatorID
}
