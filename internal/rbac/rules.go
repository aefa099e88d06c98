package rbac

// Default policy. Students consume classrooms; teachers own them.
var RolePermissions = map[string][]string{
	"student": {
		"classroom:join",
		"classroom:view",
		"material:view",
		"quiz:view",
		"quiz:attempt",
		"quiz:generate",
		"studyguide:generate",
		"evaluation:view-own",
		"awards:view-own",
		"rankings:view",
		"notifications:view",
		"user:change_password",
	},
	"teacher": {
		"classroom:create",
		"classroom:view",
		"material:upload",
		"material:view",
		"quiz:create",
		"quiz:edit",
		"quiz:publish",
		"quiz:delete",
		"quiz:view",
		"results:view",
		"results:export",
		"users:bulk_upsert",
		"users:list",
		"rankings:view",
		"notifications:view",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
