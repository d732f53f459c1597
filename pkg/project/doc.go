// Package project transfers vertex normals from a detailed source mesh to
// a coarser destination mesh.
//
// For every destination vertex a ray is cast from the vertex along its
// freshly generated normal. The nearest source triangle it crosses, front
// or back face, supplies the new normal: the triangle's vertex normals are
// blended with barycentric weights at the hit point and the blend is
// negated. Vertices whose ray misses keep their generated normal.
//
// When both meshes share an identical index list the ray search is
// skipped and the negated source normals are copied one to one.
//
// The search is brute force over all source triangles. It runs on the CPU
// over a structure-of-arrays triangle cache, or on an accelerated device
// registered with package accel when the caller asks for it.
package project
