// Package docker runs protoc inside a container image.
//
// The Executor bind-mounts the working directory and any extra host
// directories at the same paths inside the container, so an invocation
// assembled on the host runs unchanged. Native plugins handed to such an
// invocation must therefore be built for the container's platform.
//
// Usage:
//
//	exec, err := docker.NewExecutor(docker.Config{
//		Image:   "example/protoc:25.1",
//		WorkDir: cwd,
//		Mounts:  []string{space.Root(), outputDir},
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer exec.Close()
//	ok, err := exec.Execute(ctx, invocation)
package docker
