//go:build windows && amd64

//go:generate goversioninfo -64=true -o=./winresources/resource.syso ./winresources/versioninfo.json

package main

import _ "vecartdeploy/cmd/vecart-deploy/winresources"
