package inmemdb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/group"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CreateGroup(grp group.Group) (group.Group, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	grp.ID = uuid.New().String()
	repo.db.groups[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) GetGroupByID(id string) (group.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grp, ok := repo.db.groups[id]; ok {
		return *grp, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) AddMember(mbr group.Membership) (group.Membership, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	mbr.ID = uuid.New().String()
	repo.db.memberships[mbr.ID] = &mbr
	return mbr, nil
}

func (repo *groupRepository) GetMembership(groupID, studentID string) (group.Membership, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, mbr := range repo.db.memberships {
		if mbr.GroupID == groupID && mbr.StudentID == studentID {
			return *mbr, nil
		}
	}
	return group.Membership{}, group.ErrMembershipNotFound
}

func (repo *groupRepository) QueryMembershipsByGroup(groupID string) ([]group.Membership, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	members := make([]group.Membership, 0)
	for _, mbr := range repo.db.memberships {
		if mbr.GroupID == groupID {
			members = append(members, *mbr)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].CreatedAt.Before(members[j].CreatedAt) })
	return members, nil
}
