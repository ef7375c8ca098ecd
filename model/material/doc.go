// Package material implements the surface response models: diffuse
// (Lambertian), reflective (Metal), transparent (Dielectric) and a diagnostic
// normal-scattering material, together with the textures that drive their
// attenuation.
package material
