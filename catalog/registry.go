package catalog

// Key constructors. The scoped name embedded in Key.Name is what spec.md
// calls "<scoped-name>"; for db-owned kinds it is "<db>.<simple-name>" so
// that Key uniqueness holds across the whole registry, not just per-owner.

func DatabaseKey(db string) Key          { return Key{Kind: KindDatabase, Name: db} }
func TableKey(db, table string) Key      { return Key{Kind: KindTable, Name: db + "." + table} }
func ViewKey(db, view string) Key        { return Key{Kind: KindView, Name: db + "." + view} }
func FunctionKey(db, fn string) Key      { return Key{Kind: KindFunction, Name: db + "." + fn} }
func DataSourceKey(name string) Key      { return Key{Kind: KindDataSource, Name: name} }
func CachePoolKey(name string) Key       { return Key{Kind: KindHdfsCachePool, Name: name} }
func PrincipalKey(name string) Key       { return Key{Kind: KindPrincipal, Name: name} }
func PrivilegeKey(principal, id string) Key {
	return Key{Kind: KindPrivilege, Name: principal + "." + id}
}

// databaseOf returns the owning database name for kinds scoped as
// "<db>.<simple-name>", for the notify.Hub wiring in CommitDelta. Kinds with
// no owning database (data sources, cache pools, principals, privileges,
// the synthetic catalog record) report ok=false.
func databaseOf(key Key) (db string, ok bool) {
	switch key.Kind {
	case KindDatabase:
		return key.Name, true
	case KindTable, KindView, KindFunction:
		for i := 0; i < len(key.Name); i++ {
			if key.Name[i] == '.' {
				return key.Name[:i], true
			}
		}
		return "", false
	default:
		return "", false
	}
}

// addLocked assigns a new version and inserts payload at key. Must be
// called with mu held for write (spec.md §4.2 "add(O)").
func (c *Catalog) addLocked(key Key, payload Payload) *Object {
	obj := &Object{
		Key:     key,
		Version: c.incrementVersion(),
		Loaded:  !key.Kind.IsHeavy(),
		Payload: payload,
	}
	if key.Kind.IsHeavy() {
		obj.lock = newObjectLock()
	}
	c.objects[key] = obj
	return obj
}

// removeLocked deletes key from the registry and appends a tombstone
// carrying minimalPayload. Must be called with mu held for write
// (spec.md §4.2 "remove(K)", §4.3).
func (c *Catalog) removeLocked(key Key, minimalPayload Payload) (*Object, bool) {
	existing, ok := c.objects[key]
	if !ok {
		return nil, false
	}
	delete(c.objects, key)
	v := c.incrementVersion()
	c.deleteLog.append(Tombstone{Key: key, Version: v, Payload: minimalPayload})
	return existing, true
}

// --- Databases -------------------------------------------------------

// AddDatabase inserts or refreshes a database entry (spec.md §4.2 add()).
func (c *Catalog) AddDatabase(name, owner, comment string) *Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(DatabaseKey(name), Database{Name: name, Owner: owner, Comment: comment})
}

// RemoveDatabase tombstones every owned table, view and function together
// with the database itself, inside one F.write critical section, so
// coordinators observe the children's removal no later than the parent's
// (spec.md §4.2 "Cascade on database removal").
func (c *Catalog) RemoveDatabase(name string) (*Object, []*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := DatabaseKey(name)
	if _, ok := c.objects[key]; !ok {
		return nil, nil, &NotFoundError{Kind: KindDatabase, Name: name}
	}

	var removedChildren []*Object
	for table := range c.dbTables[name] {
		tk := TableKey(name, table)
		if obj, ok := c.removeLocked(tk, minimalTablePayload(name, table)); ok {
			removedChildren = append(removedChildren, obj)
		}
	}
	for view := range c.dbViews[name] {
		vk := ViewKey(name, view)
		if obj, ok := c.removeLocked(vk, minimalTablePayload(name, view)); ok {
			removedChildren = append(removedChildren, obj)
		}
	}
	for fn := range c.dbFunctions[name] {
		fk := FunctionKey(name, fn)
		if obj, ok := c.removeLocked(fk, minimalFunctionPayload(fn)); ok {
			removedChildren = append(removedChildren, obj)
		}
	}
	delete(c.dbTables, name)
	delete(c.dbViews, name)
	delete(c.dbFunctions, name)

	removedDB, _ := c.removeLocked(key, Database{Name: name})
	return removedDB, removedChildren, nil
}

// --- Tables ------------------------------------------------------------

// AddTable inserts an incomplete table shell owned by db (spec.md
// "Lifecycle"). The database must already exist.
func (c *Catalog) AddTable(db, table string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.objects[DatabaseKey(db)]; !ok {
		return nil, &NotFoundError{Kind: KindDatabase, Name: db}
	}
	obj := c.addLocked(TableKey(db, table), Table{Database: db, Name: table})
	ownedSet(c.dbTables, db)[table] = struct{}{}
	return obj, nil
}

// RemoveTable tombstones a table owned by db.
func (c *Catalog) RemoveTable(db, table string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.removeLocked(TableKey(db, table), minimalTablePayload(db, table))
	if !ok {
		return nil, &NotFoundError{Kind: KindTable, Name: db + "." + table}
	}
	delete(c.dbTables[db], table)
	return obj, nil
}

// RenameTable is the atomic remove(K_old); add(K_new) of spec.md §4.2,
// executed in a single F.write critical section (I-invariant preserving
// rename, P6). The renamed table becomes an incomplete shell again,
// mirroring the source system's behavior of forcing a reload after rename.
func (c *Catalog) RenameTable(oldDB, oldTable, newDB, newTable string) (old, new *Object, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.objects[DatabaseKey(newDB)]; !ok {
		return nil, nil, &NotFoundError{Kind: KindDatabase, Name: newDB}
	}
	old, ok := c.removeLocked(TableKey(oldDB, oldTable), minimalTablePayload(oldDB, oldTable))
	if !ok {
		return nil, nil, &NotFoundError{Kind: KindTable, Name: oldDB + "." + oldTable}
	}
	delete(c.dbTables[oldDB], oldTable)

	new = c.addLocked(TableKey(newDB, newTable), Table{Database: newDB, Name: newTable})
	ownedSet(c.dbTables, newDB)[newTable] = struct{}{}
	return old, new, nil
}

// --- Views ---------------------------------------------------------------

func (c *Catalog) AddView(db, name string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.objects[DatabaseKey(db)]; !ok {
		return nil, &NotFoundError{Kind: KindDatabase, Name: db}
	}
	obj := c.addLocked(ViewKey(db, name), View{Database: db, Name: name})
	ownedSet(c.dbViews, db)[name] = struct{}{}
	return obj, nil
}

func (c *Catalog) RemoveView(db, name string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.removeLocked(ViewKey(db, name), minimalTablePayload(db, name))
	if !ok {
		return nil, &NotFoundError{Kind: KindView, Name: db + "." + name}
	}
	delete(c.dbViews[db], name)
	return obj, nil
}

// --- Functions -----------------------------------------------------------

func (c *Catalog) AddFunction(db, name, signature, binaryURL string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.objects[DatabaseKey(db)]; !ok {
		return nil, &NotFoundError{Kind: KindDatabase, Name: db}
	}
	obj := c.addLocked(FunctionKey(db, name), Function{Database: db, Name: name, Signature: signature, BinaryURL: binaryURL})
	ownedSet(c.dbFunctions, db)[name] = struct{}{}
	return obj, nil
}

func (c *Catalog) RemoveFunction(db, name string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.removeLocked(FunctionKey(db, name), minimalFunctionPayload(name))
	if !ok {
		return nil, &NotFoundError{Kind: KindFunction, Name: db + "." + name}
	}
	delete(c.dbFunctions[db], name)
	return obj, nil
}

// --- Data sources / cache pools / principals / privileges ---------------

func (c *Catalog) AddDataSource(name, className, uri string) *Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(DataSourceKey(name), DataSource{Name: name, ClassName: className, URI: uri})
}

func (c *Catalog) RemoveDataSource(name string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.removeLocked(DataSourceKey(name), DataSource{Name: name})
	if !ok {
		return nil, &NotFoundError{Kind: KindDataSource, Name: name}
	}
	return obj, nil
}

func (c *Catalog) UpsertCachePool(name, user, group string, limit int64) *Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(CachePoolKey(name), CachePool{Name: name, PoolUser: user, PoolGroup: group, Limit: limit})
}

func (c *Catalog) RemoveCachePool(name string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.removeLocked(CachePoolKey(name), CachePool{Name: name})
	if !ok {
		return nil, &NotFoundError{Kind: KindHdfsCachePool, Name: name}
	}
	return obj, nil
}

func (c *Catalog) AddPrincipal(name string, isRole bool) *Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(PrincipalKey(name), Principal{Name: name, IsRole: isRole})
}

// RemovePrincipal cascades to owned privileges, mirroring RemoveDatabase
// (spec.md §9 "Principals → privileges is strict ownership").
func (c *Catalog) RemovePrincipal(name string) (*Object, []*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := PrincipalKey(name)
	if _, ok := c.objects[key]; !ok {
		return nil, nil, &NotFoundError{Kind: KindPrincipal, Name: name}
	}

	var removed []*Object
	for privID := range c.principalPrivs[name] {
		if obj, ok := c.removeLocked(PrivilegeKey(name, privID), Privilege{PrincipalName: name}); ok {
			removed = append(removed, obj)
		}
	}
	delete(c.principalPrivs, name)

	obj, _ := c.removeLocked(key, Principal{Name: name})
	return obj, removed, nil
}

func (c *Catalog) AddPrivilege(principal, privID, privilege, scope string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.objects[PrincipalKey(principal)]; !ok {
		return nil, &NotFoundError{Kind: KindPrincipal, Name: principal}
	}
	obj := c.addLocked(PrivilegeKey(principal, privID), Privilege{PrincipalName: principal, Privilege: privilege, Scope: scope})
	ownedSet(c.principalPrivs, principal)[privID] = struct{}{}
	return obj, nil
}

func (c *Catalog) RemovePrivilege(principal, privID string) (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.removeLocked(PrivilegeKey(principal, privID), Privilege{PrincipalName: principal})
	if !ok {
		return nil, &NotFoundError{Kind: KindPrivilege, Name: principal + "." + privID}
	}
	delete(c.principalPrivs[principal], privID)
	return obj, nil
}

// --- Snapshots (F.read) --------------------------------------------------

// GetObject returns an immutable copy of the live object at key, if any.
func (c *Catalog) GetObject(key Key) (*Object, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.objects[key]
	if !ok {
		return nil, false
	}
	return obj.Clone(), true
}

func (c *Catalog) snapshotByKind(kind Kind) []*Object {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Object
	for k, obj := range c.objects {
		if k.Kind == kind {
			out = append(out, obj.Clone())
		}
	}
	return out
}

func (c *Catalog) AllDatabases() []*Object   { return c.snapshotByKind(KindDatabase) }
func (c *Catalog) AllDataSources() []*Object { return c.snapshotByKind(KindDataSource) }
func (c *Catalog) AllCachePools() []*Object  { return c.snapshotByKind(KindHdfsCachePool) }
func (c *Catalog) AllPrincipals() []*Object  { return c.snapshotByKind(KindPrincipal) }

func (c *Catalog) ownedSnapshot(index map[string]map[string]struct{}, owner string, keyFn func(owner, name string) Key) []*Object {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := index[owner]
	out := make([]*Object, 0, len(names))
	for name := range names {
		if obj, ok := c.objects[keyFn(owner, name)]; ok {
			out = append(out, obj.Clone())
		}
	}
	return out
}

func (c *Catalog) TablesOf(db string) []*Object    { return c.ownedSnapshot(c.dbTables, db, TableKey) }
func (c *Catalog) ViewsOf(db string) []*Object     { return c.ownedSnapshot(c.dbViews, db, ViewKey) }
func (c *Catalog) FunctionsOf(db string) []*Object { return c.ownedSnapshot(c.dbFunctions, db, FunctionKey) }
func (c *Catalog) PrivilegesOf(principal string) []*Object {
	return c.ownedSnapshot(c.principalPrivs, principal, PrivilegeKey)
}

func minimalTablePayload(db, name string) Payload {
	return Table{Database: db, Name: name}
}

func minimalFunctionPayload(name string) Payload {
	return Function{Name: name}
}
